package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func installObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	original := Get()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(original) })
	return recorded
}

func TestContextWithCorrelationID(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "test-id")
	assert.Equal(t, "test-id", CorrelationIDFromContext(ctx))
}

func TestContextWithCorrelationID_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is tolerated on purpose
	ctx := ContextWithCorrelationID(nil, "abc")
	assert.Equal(t, "abc", CorrelationIDFromContext(ctx))
}

func TestCorrelationIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	//nolint:staticcheck
	assert.Empty(t, CorrelationIDFromContext(nil))
}

func TestWithContextAddsCorrelationIDField(t *testing.T) {
	recorded := installObserver(t)

	ctx := ContextWithCorrelationID(context.Background(), "context-id")
	WarnContext(ctx, "route lookup slow")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "context-id", entries[0].ContextMap()["correlation_id"])
}

func TestWithContextWithoutCorrelationID(t *testing.T) {
	recorded := installObserver(t)

	InfoContext(context.Background(), "plain")

	entries := recorded.All()
	require.Len(t, entries, 1)
	_, ok := entries[0].ContextMap()["correlation_id"]
	assert.False(t, ok)
}

func TestNamed(t *testing.T) {
	recorded := installObserver(t)

	Named("routing").Info("hello")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "routing", entries[0].LoggerName)
}

func TestInit(t *testing.T) {
	original := Get()
	t.Cleanup(func() { SetLogger(original) })

	require.NoError(t, Init("development", "travel-service"))
	assert.NotNil(t, Get())
	require.NoError(t, Init("production", ""))
	assert.NotNil(t, Get())
}

package common

import (
	"errors"
	"net/http"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleServiceError writes the response for err and reports whether it did.
// AppErrors keep their status, anything else is logged and becomes a 500.
//
//	result, err := h.service.QuoteTravelFee(ctx, req)
//	if HandleServiceError(c, err, "failed to quote travel fee") {
//	    return
//	}
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		AppErrorResponse(c, appErr)
		return true
	}

	logger.ErrorContext(c.Request.Context(), fallbackMessage, zap.Error(err))
	_ = c.Error(err)
	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
	return true
}

// BindJSON binds the request body and sends a 400 on failure.
// Returns true on success, false on failure (response already sent).
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		AppErrorResponse(c, NewBadRequestError(err.Error(), err))
		return false
	}
	return true
}

// BindQuery binds query parameters and sends a 400 on failure.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		AppErrorResponse(c, NewBadRequestError(err.Error(), err))
		return false
	}
	return true
}

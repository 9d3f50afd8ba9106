package travel

import (
	"errors"
	"math"
	"strings"

	"github.com/comercial-rgb/techtrust-system-sub001/pkg/common"
	"github.com/comercial-rgb/techtrust-system-sub001/pkg/validation"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for travel distance and fees
type Handler struct {
	service *Service
}

// NewHandler creates a new travel handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Distance returns the estimated distance, direction and midpoint of two points
func (h *Handler) Distance(c *gin.Context) {
	var req DistanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Distance(req)
	if common.HandleServiceError(c, err, "failed to calculate distance") {
		return
	}
	common.SuccessResponse(c, resp)
}

// RoadDistance returns the driving distance, falling back to the estimate
func (h *Handler) RoadDistance(c *gin.Context) {
	var req RoadDistanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.RoadDistanceFor(c.Request.Context(), req)
	if common.HandleServiceError(c, err, "failed to calculate road distance") {
		return
	}
	common.SuccessResponse(c, resp)
}

// TravelFee applies a per-km fee beyond the free distance
func (h *Handler) TravelFee(c *gin.Context) {
	var req FeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	common.SuccessResponse(c, h.service.TravelFee(req))
}

// QuoteFee settles a provider's mileage based travel fee
func (h *Handler) QuoteFee(c *gin.Context) {
	var req QuoteFeeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	quote, err := h.service.QuoteTravelFee(c.Request.Context(), req.Provider.Location(), req.Service.Location(), req.Settings)
	if common.HandleServiceError(c, err, "failed to quote travel fee") {
		return
	}
	common.SuccessResponse(c, quote)
}

// NearbyProviders filters candidates whose radius covers the service location
func (h *Handler) NearbyProviders(c *gin.Context) {
	var req NearbyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	matches := h.service.FindProvidersWithinRadius(req.Service.Location(), req.Candidates)
	common.SuccessResponse(c, gin.H{
		"matches": matches,
		"count":   len(matches),
	})
}

// ParseDistance reads a display distance from the value query parameter
func (h *Handler) ParseDistance(c *gin.Context) {
	value := c.Query("value")
	if strings.TrimSpace(value) == "" {
		common.AppErrorResponse(c, common.NewValidationError("value is required"))
		return
	}
	parsed := h.service.ParseDistance(value)
	if math.IsInf(parsed.Km, 0) {
		common.AppErrorResponse(c, common.NewValidationError("value is out of range"))
		return
	}
	common.SuccessResponse(c, parsed)
}

// EstimateTravel returns the travel time for a distance
func (h *Handler) EstimateTravel(c *gin.Context) {
	var q EstimateQuery
	if !common.BindQuery(c, &q) {
		return
	}
	if !validate(c, &q) {
		return
	}
	common.SuccessResponse(c, h.service.EstimateTravel(q.DistanceKm, q.SpeedKmh, ParseLocale(q.Locale)))
}

// Rules returns the platform default travel fee rules
func (h *Handler) Rules(c *gin.Context) {
	common.SuccessResponse(c, h.service.Rules())
}

// RegisterRoutes registers travel routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	travel := rg.Group("/travel")
	{
		travel.POST("/distance", h.Distance)
		travel.POST("/road-distance", h.RoadDistance)
		travel.POST("/fee", h.TravelFee)
		travel.POST("/quote-fee", h.QuoteFee)
		travel.POST("/providers/nearby", h.NearbyProviders)
		travel.GET("/parse", h.ParseDistance)
		travel.GET("/eta", h.EstimateTravel)
		travel.GET("/rules", h.Rules)
	}
}

func bindAndValidate(c *gin.Context, req interface{}) bool {
	if !common.BindJSON(c, req) {
		return false
	}
	return validate(c, req)
}

// validate sends a 400 listing every failing field.
func validate(c *gin.Context, req interface{}) bool {
	err := validation.ValidateStruct(req)
	if err == nil {
		return true
	}

	appErr := common.NewValidationError(err.Error())
	var ve *validation.ValidationError
	if errors.As(err, &ve) && hasCoordinateError(ve) {
		appErr.WithErrorCode(common.CodeInvalidCoordinate)
	}
	common.AppErrorResponse(c, appErr)
	return false
}

func hasCoordinateError(ve *validation.ValidationError) bool {
	for field := range ve.Errors {
		if strings.HasSuffix(field, "latitude") || strings.HasSuffix(field, "longitude") {
			return true
		}
	}
	return false
}

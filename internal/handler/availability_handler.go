package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/pkg/response"
)

// AvailabilityHandler handles HTTP requests for availability checks and
// the per-date occupancy view.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all availability routes on the given router group.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	availability := r.Group("/api/v1/availability")
	{
		availability.POST("/check", h.CheckAvailability)
		availability.GET("/occupancy", h.Occupancy)
	}
}

// CheckAvailability handles POST /api/v1/availability/check.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	var req struct {
		ResourceIDs          []uuid.UUID `json:"resource_ids" binding:"required,min=1"`
		Dates                []time.Time `json:"dates" binding:"required,min=1"`
		ExcludeReservationID *uuid.UUID  `json:"exclude_reservation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), req.ResourceIDs, req.Dates, req.ExcludeReservationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Occupancy handles GET /api/v1/availability/occupancy?date=YYYY-MM-DD.
func (h *AvailabilityHandler) Occupancy(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	result, err := h.service.OccupancyOn(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

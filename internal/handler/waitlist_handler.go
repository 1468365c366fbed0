package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/pkg/response"
)

// WaitlistHandler handles HTTP requests for the waitlist.
type WaitlistHandler struct {
	service *application.WaitlistService
}

// NewWaitlistHandler creates a new WaitlistHandler.
func NewWaitlistHandler(service *application.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: service}
}

// RegisterRoutes registers all waitlist routes on the given router group.
func (h *WaitlistHandler) RegisterRoutes(r *gin.RouterGroup) {
	waitlist := r.Group("/api/v1/waitlist")
	{
		waitlist.POST("", h.CreateEntry)
		waitlist.GET("", h.ListByDate)
		waitlist.GET("/:id", h.GetEntry)
		waitlist.POST("/:id/contact", h.MarkContacted)
		waitlist.POST("/:id/decline", h.Decline)
		waitlist.POST("/:id/no-answer", h.MarkNoAnswer)
		waitlist.POST("/:id/convert", h.Convert)
		waitlist.POST("/expire", h.ExpireStale)
	}
}

// CreateEntry handles POST /api/v1/waitlist.
func (h *WaitlistHandler) CreateEntry(c *gin.Context) {
	var req application.CreateWaitlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateEntry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListByDate handles GET /api/v1/waitlist?date=YYYY-MM-DD.
func (h *WaitlistHandler) ListByDate(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	result, err := h.service.ListByDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetEntry handles GET /api/v1/waitlist/:id.
func (h *WaitlistHandler) GetEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// MarkContacted handles POST /api/v1/waitlist/:id/contact.
func (h *WaitlistHandler) MarkContacted(c *gin.Context) {
	h.mutate(c, h.service.MarkContacted)
}

// Decline handles POST /api/v1/waitlist/:id/decline.
func (h *WaitlistHandler) Decline(c *gin.Context) {
	h.mutate(c, h.service.Decline)
}

// MarkNoAnswer handles POST /api/v1/waitlist/:id/no-answer.
func (h *WaitlistHandler) MarkNoAnswer(c *gin.Context) {
	h.mutate(c, h.service.MarkNoAnswer)
}

// Convert handles POST /api/v1/waitlist/:id/convert.
func (h *WaitlistHandler) Convert(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		ReservationID uuid.UUID `json:"reservation_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Convert(c.Request.Context(), id, req.ReservationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ExpireStale handles POST /api/v1/waitlist/expire. Safe to call from a
// nightly cron; a second run changes nothing.
func (h *WaitlistHandler) ExpireStale(c *gin.Context) {
	expired, err := h.service.ExpireStale(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"expired": expired})
}

func (h *WaitlistHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*application.WaitlistEntryDTO, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

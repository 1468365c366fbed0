package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/pkg/response"
)

const dateLayout = "2006-01-02"

// ReservationHandler handles HTTP requests for the reservation lifecycle.
type ReservationHandler struct {
	service *application.ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(service *application.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes registers all reservation routes on the given router group.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup) {
	reservations := r.Group("/api/v1/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.POST("/linked", h.CreateLinkedReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.GET("/:id/group", h.GetGroup)
		reservations.GET("/ticket/:ticket", h.GetByTicket)
		reservations.POST("/:id/cancel", h.CancelGroup)
		reservations.POST("/:id/move", h.ChangeDate)
		reservations.PUT("/:id/furniture", h.ReassignFurniture)
		reservations.PUT("/:id/furniture-lock", h.SetFurnitureLock)
		reservations.POST("/:id/states", h.AddState)
		reservations.DELETE("/:id/states/:code", h.RemoveState)
		reservations.PUT("/:id/state", h.ChangeState)
		reservations.PUT("/:id/daily-state", h.SetDailyState)
	}
}

// CreateReservation handles POST /api/v1/reservations.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CreateLinkedReservation handles POST /api/v1/reservations/linked.
func (h *ReservationHandler) CreateLinkedReservation(c *gin.Context) {
	var req application.CreateLinkedReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateLinkedReservation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListReservations handles GET /api/v1/reservations filtered by ?date= or
// ?customer_id=.
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid customer ID")
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		result, err := h.service.ListByCustomer(c.Request.Context(), customerID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

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

// GetReservation handles GET /api/v1/reservations/:id.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.GetReservation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetGroup handles GET /api/v1/reservations/:id/group.
func (h *ReservationHandler) GetGroup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.GetGroup(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetByTicket handles GET /api/v1/reservations/ticket/:ticket.
func (h *ReservationHandler) GetByTicket(c *gin.Context) {
	result, err := h.service.GetByTicket(c.Request.Context(), c.Param("ticket"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelGroup handles POST /api/v1/reservations/:id/cancel.
func (h *ReservationHandler) CancelGroup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		OnlyFuture bool   `json:"only_future"`
		Note       string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	cancelled, err := h.service.CancelGroup(c.Request.Context(), id, req.OnlyFuture, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cancelled": cancelled})
}

// ChangeDate handles POST /api/v1/reservations/:id/move.
func (h *ReservationHandler) ChangeDate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Date        time.Time   `json:"date" binding:"required"`
		ResourceIDs []uuid.UUID `json:"resource_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ChangeDate(c.Request.Context(), id, req.Date, req.ResourceIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ReassignFurniture handles PUT /api/v1/reservations/:id/furniture.
func (h *ReservationHandler) ReassignFurniture(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		ResourceIDs []uuid.UUID `json:"resource_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ReassignFurniture(c.Request.Context(), id, req.ResourceIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetFurnitureLock handles PUT /api/v1/reservations/:id/furniture-lock.
func (h *ReservationHandler) SetFurnitureLock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Locked bool `json:"locked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.LockFurniture(c.Request.Context(), id, req.Locked)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddState handles POST /api/v1/reservations/:id/states.
func (h *ReservationHandler) AddState(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddState(c.Request.Context(), id, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveState handles DELETE /api/v1/reservations/:id/states/:code.
func (h *ReservationHandler) RemoveState(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.RemoveState(c.Request.Context(), id, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangeState handles PUT /api/v1/reservations/:id/state.
func (h *ReservationHandler) ChangeState(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ChangeState(c.Request.Context(), id, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetDailyState handles PUT /api/v1/reservations/:id/daily-state.
func (h *ReservationHandler) SetDailyState(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Date  time.Time `json:"date" binding:"required"`
		Codes []string  `json:"codes" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetDailyState(c.Request.Context(), id, req.Date, req.Codes); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// --- shared helpers ---

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		response.BadRequest(c, key+" query parameter is required")
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		response.BadRequest(c, "invalid "+key+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

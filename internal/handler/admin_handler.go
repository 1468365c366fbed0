package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/pkg/response"
)

// AdminHandler handles back-office HTTP requests: state configuration,
// guest profiles, and manual room-change propagation.
type AdminHandler struct {
	states     *application.StateService
	customers  *application.CustomerService
	roomChange *application.RoomChangeService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	states *application.StateService,
	customers *application.CustomerService,
	roomChange *application.RoomChangeService,
) *AdminHandler {
	return &AdminHandler{states: states, customers: customers, roomChange: roomChange}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	states := r.Group("/api/v1/states")
	{
		states.GET("", h.ListStates)
		states.PUT("", h.ConfigureState)
		states.DELETE("/:code", h.DeleteState)
	}

	customers := r.Group("/api/v1/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
	}

	r.POST("/api/v1/room-changes", h.PropagateRoomChange)
}

// ListStates handles GET /api/v1/states.
func (h *AdminHandler) ListStates(c *gin.Context) {
	result, err := h.states.ListStates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ConfigureState handles PUT /api/v1/states.
func (h *AdminHandler) ConfigureState(c *gin.Context) {
	var req application.ConfigureStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.states.ConfigureState(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteState handles DELETE /api/v1/states/:code.
func (h *AdminHandler) DeleteState(c *gin.Context) {
	if err := h.states.DeleteState(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// CreateCustomer handles POST /api/v1/customers.
func (h *AdminHandler) CreateCustomer(c *gin.Context) {
	var req application.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.customers.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetCustomer handles GET /api/v1/customers/:id.
func (h *AdminHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PropagateRoomChange handles POST /api/v1/room-changes, the manual
// fallback for when the hotel feed is down.
func (h *AdminHandler) PropagateRoomChange(c *gin.Context) {
	var req struct {
		GuestName string `json:"guest_name" binding:"required"`
		OldRoom   string `json:"old_room"`
		NewRoom   string `json:"new_room" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.roomChange.PropagateRoomChange(c.Request.Context(), req.GuestName, req.OldRoom, req.NewRoom)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/pkg/response"
)

// RegistryHandler handles HTTP requests for the furniture registry: zones,
// items, blocks, and map positions.
type RegistryHandler struct {
	service *application.RegistryService
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(service *application.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

// RegisterRoutes registers all registry routes on the given router group.
func (h *RegistryHandler) RegisterRoutes(r *gin.RouterGroup) {
	zones := r.Group("/api/v1/zones")
	{
		zones.POST("", h.CreateZone)
		zones.GET("", h.ListZones)
		zones.GET("/:id/furniture", h.ListByZone)
		zones.GET("/:id/map", h.ZoneMap)
	}

	furniture := r.Group("/api/v1/furniture")
	{
		furniture.POST("", h.CreateResource)
		furniture.GET("/:id", h.GetResource)
		furniture.PATCH("/:id", h.UpdateResource)
		furniture.DELETE("/:id", h.DeactivateResource)
		furniture.PUT("/:id/position", h.SetPositionOverride)
	}

	blocks := r.Group("/api/v1/blocks")
	{
		blocks.POST("", h.CreateBlock)
		blocks.POST("/:id/unblock", h.Unblock)
	}
}

// CreateZone handles POST /api/v1/zones.
func (h *RegistryHandler) CreateZone(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateZone(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListZones handles GET /api/v1/zones.
func (h *RegistryHandler) ListZones(c *gin.Context) {
	result, err := h.service.ListZones(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByZone handles GET /api/v1/zones/:id/furniture.
func (h *RegistryHandler) ListByZone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.ListByZone(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ZoneMap handles GET /api/v1/zones/:id/map?date=YYYY-MM-DD.
func (h *RegistryHandler) ZoneMap(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	result, err := h.service.ZoneMapOn(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateResource handles POST /api/v1/furniture.
func (h *RegistryHandler) CreateResource(c *gin.Context) {
	var req application.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateResource(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetResource handles GET /api/v1/furniture/:id.
func (h *RegistryHandler) GetResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.GetResource(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateResource handles PATCH /api/v1/furniture/:id.
func (h *RegistryHandler) UpdateResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req application.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateResource(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeactivateResource handles DELETE /api/v1/furniture/:id.
func (h *RegistryHandler) DeactivateResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeactivateResource(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deactivated": true})
}

// SetPositionOverride handles PUT /api/v1/furniture/:id/position.
func (h *RegistryHandler) SetPositionOverride(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Date time.Time `json:"date" binding:"required"`
		X    float64   `json:"x"`
		Y    float64   `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetPositionOverride(c.Request.Context(), id, req.Date, req.X, req.Y); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// CreateBlock handles POST /api/v1/blocks.
func (h *RegistryHandler) CreateBlock(c *gin.Context) {
	var req application.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBlock(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Unblock handles POST /api/v1/blocks/:id/unblock. The block is replaced
// by zero, one, or two narrower blocks.
func (h *RegistryHandler) Unblock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		From time.Time `json:"from" binding:"required"`
		To   time.Time `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Unblock(c.Request.Context(), id, body.From, body.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

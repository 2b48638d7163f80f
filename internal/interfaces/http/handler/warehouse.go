package handler

import (
	"github.com/exportops/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WarehouseHandler handles warehouse API endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouseService *partner.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *partner.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// RegisterRoutes registers warehouse routes on the given group
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.Create)
		warehouses.GET("", h.List)
		warehouses.GET("/:id", h.GetByID)
		warehouses.GET("/code/:code", h.GetByCode)
		warehouses.PUT("/:id", h.Update)
		warehouses.POST("/:id/activate", h.Activate)
		warehouses.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create registers a new warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req partner.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouse, err := h.warehouseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, warehouse)
}

// GetByID returns one warehouse
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	warehouse, err := h.warehouseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// GetByCode returns the warehouse with the given code
func (h *WarehouseHandler) GetByCode(c *gin.Context) {
	warehouse, err := h.warehouseService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// List returns a page of warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	filter := parseListFilter(c)

	warehouses, total, err := h.warehouseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, warehouses, total, filter.Page, filter.PageSize)
}

// Update applies partial changes to a warehouse
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req partner.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouse, err := h.warehouseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// Activate marks a warehouse active so receipt lines addressed to it are
// ingested again.
func (h *WarehouseHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	warehouse, err := h.warehouseService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// Deactivate marks a warehouse inactive. Receipt lines addressed to an
// inactive warehouse are skipped during ingest.
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	warehouse, err := h.warehouseService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, warehouse)
}

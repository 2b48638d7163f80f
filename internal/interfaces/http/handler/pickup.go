package handler

import (
	"github.com/exportops/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PickupHandler handles in-transit pickup API endpoints
type PickupHandler struct {
	BaseHandler
	pickupService *trade.PickupService
}

// NewPickupHandler creates a new PickupHandler
func NewPickupHandler(pickupService *trade.PickupService) *PickupHandler {
	return &PickupHandler{pickupService: pickupService}
}

// RegisterRoutes registers pickup routes on the given group
func (h *PickupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pickups := rg.Group("/pickups")
	{
		pickups.POST("", h.Record)
		pickups.GET("/:id", h.GetByID)
		pickups.POST("/:id/complete", h.Complete)
		pickups.POST("/:id/cancel", h.Cancel)
	}
	rg.GET("/orders/:id/pickups", h.ListByOrder)
}

// Record registers an in-transit pickup against an order line. The quantity
// is validated against the line's remaining commitment before it is stored.
func (h *PickupHandler) Record(c *gin.Context) {
	var req trade.RecordPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pickup, err := h.pickupService.RecordPickup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, pickup)
}

// GetByID returns one pickup
func (h *PickupHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	pickup, err := h.pickupService.GetPickup(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pickup)
}

// Complete converts an in-transit pickup into a ledger receipt at the
// destination warehouse. Completing the same pickup twice is rejected.
func (h *PickupHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	var req trade.CompletePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pickup, err := h.pickupService.CompletePickup(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pickup)
}

// Cancel voids an in-transit pickup, releasing its committed quantity
func (h *PickupHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	if err := h.pickupService.CancelPickup(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListByOrder returns all pickups recorded against an order
func (h *PickupHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	pickups, err := h.pickupService.ListPickupsByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pickups)
}

package handler

import (
	appledger "github.com/exportops/backend/internal/application/ledger"
	"github.com/exportops/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles purchase order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *trade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.GET("/:id/commitments", h.Commitments)
		orders.POST("/:id/complete", h.Complete)
		orders.POST("/:id/cancel", h.Cancel)
	}
}

// Create registers a purchase order with its lines
func (h *OrderHandler) Create(c *gin.Context) {
	var req trade.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID returns one order with its lines
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List returns a page of orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter appledger.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Commitments reports, per order line, how much is ordered, already inwarded,
// and in transit. New inward or pickup quantities must fit the remainder.
func (h *OrderHandler) Commitments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	commitments, err := h.orderService.OrderCommitments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, commitments)
}

// Complete marks an order as fully received
func (h *OrderHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.CompleteOrder(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Cancel cancels an order
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.CancelOrder(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

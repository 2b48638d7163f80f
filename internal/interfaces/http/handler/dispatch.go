package handler

import (
	"github.com/exportops/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DispatchHandler handles outward dispatch API endpoints
type DispatchHandler struct {
	BaseHandler
	outwardService *ledger.OutwardService
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(outwardService *ledger.OutwardService) *DispatchHandler {
	return &DispatchHandler{outwardService: outwardService}
}

// RegisterRoutes registers dispatch routes on the given group
func (h *DispatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dispatches := rg.Group("/dispatches")
	{
		dispatches.POST("", h.Allocate)
		dispatches.GET("", h.List)
		dispatches.GET("/:id", h.GetByID)
		dispatches.PUT("/:id", h.Edit)
		dispatches.DELETE("/:id", h.Delete)
		dispatches.POST("/:id/reverse", h.Reverse)
	}
}

// Allocate creates an outward dispatch against the ledger. The whole quantity
// is allocated oldest entry first or the request is refused; there is no
// partial fulfilment.
func (h *DispatchHandler) Allocate(c *gin.Context) {
	var req ledger.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dispatch, err := h.outwardService.Allocate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dispatch)
}

// GetByID returns one dispatch with its entry consumptions
func (h *DispatchHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispatch ID format")
		return
	}

	dispatch, err := h.outwardService.GetDispatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dispatch)
}

// List returns a page of dispatches
func (h *DispatchHandler) List(c *gin.Context) {
	var filter ledger.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.outwardService.ListDispatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Edit changes the quantity of a dispatch by reversing the old allocation in
// full and allocating afresh at the new quantity.
func (h *DispatchHandler) Edit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispatch ID format")
		return
	}

	var req ledger.EditDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dispatch, err := h.outwardService.EditDispatch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dispatch)
}

// Delete reverses a dispatch's allocation and removes the dispatch record
func (h *DispatchHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispatch ID format")
		return
	}

	if err := h.outwardService.DeleteDispatch(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Reverse restores the stock a dispatch consumed, newest consumption first.
// Reversing an already reversed dispatch is a no-op.
func (h *DispatchHandler) Reverse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispatch ID format")
		return
	}

	if err := h.outwardService.ReverseDispatch(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

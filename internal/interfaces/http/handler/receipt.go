package handler

import (
	"github.com/exportops/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptHandler handles inward receipt API endpoints
type ReceiptHandler struct {
	BaseHandler
	inwardService *ledger.InwardService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(inwardService *ledger.InwardService) *ReceiptHandler {
	return &ReceiptHandler{inwardService: inwardService}
}

// RegisterRoutes registers receipt routes on the given group
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	{
		receipts.POST("", h.Ingest)
		receipts.GET("", h.List)
		receipts.GET("/:id", h.GetByID)
		receipts.DELETE("/:id", h.Delete)
	}
}

// Ingest records one goods arrival. A receipt naming an unknown warehouse
// on any line is skipped whole; the response reports zero entries created
// and how many lines were skipped.
func (h *ReceiptHandler) Ingest(c *gin.Context) {
	var req ledger.IngestReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.inwardService.IngestReceipt(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID returns one receipt with its lines
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID format")
		return
	}

	receipt, err := h.inwardService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipt)
}

// List returns a page of receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	var filter ledger.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.inwardService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Delete removes a receipt and its entries. Refused with a conflict when any
// entry has already been dispatched from.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID format")
		return
	}

	if err := h.inwardService.DeleteReceipt(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

package handler

import (
	"github.com/exportops/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles availability and stock summary API endpoints
type StockHandler struct {
	BaseHandler
	availabilityService *ledger.AvailabilityService
	summaryService      *ledger.SummaryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(availabilityService *ledger.AvailabilityService, summaryService *ledger.SummaryService) *StockHandler {
	return &StockHandler{
		availabilityService: availabilityService,
		summaryService:      summaryService,
	}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/availability", h.Availability)
		stock.GET("/summary", h.Summary)
	}
}

// Availability reports allocatable stock for one product key. Pass product_id
// when the entries carry one, or sku for prefix matching against historical
// rows.
func (h *StockHandler) Availability(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing warehouse_id")
		return
	}

	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid product_id format")
			return
		}
		productID = &id
	}
	sku := c.Query("sku")

	availability, err := h.availabilityService.Available(c.Request.Context(), warehouseID, productID, sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, availability)
}

// Summary builds the stock overview: one row per live entry with provenance,
// status, age, and the in-transit flag.
func (h *StockHandler) Summary(c *gin.Context) {
	var filter ledger.SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	rows, err := h.summaryService.StockSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

package ledger

import (
	"time"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InwardLineRequest is one product position on an inward receipt
type InwardLineRequest struct {
	OrderLineID *uuid.UUID      `json:"order_line_id,omitempty"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Category    string          `json:"category,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// IngestReceiptRequest records one goods arrival
type IngestReceiptRequest struct {
	OrderNumber    string              `json:"order_number,omitempty"`
	InvoiceNumbers []string            `json:"invoice_numbers,omitempty"`
	CompanyName    string              `json:"company_name,omitempty"`
	ReceivedAt     *time.Time          `json:"received_at,omitempty"`
	Remark         string              `json:"remark,omitempty"`
	Lines          []InwardLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// IngestReceiptResponse reports what the ingestor did with each line
type IngestReceiptResponse struct {
	ReceiptID      uuid.UUID       `json:"receipt_id"`
	EntriesCreated int             `json:"entries_created"`
	LinesSkipped   int             `json:"lines_skipped"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
}

// ReceiptResponse is an inward receipt in API responses
type ReceiptResponse struct {
	ID             uuid.UUID             `json:"id"`
	OrderNumber    string                `json:"order_number,omitempty"`
	InvoiceNumbers []string              `json:"invoice_numbers,omitempty"`
	CompanyName    string                `json:"company_name,omitempty"`
	ReceivedAt     time.Time             `json:"received_at"`
	Remark         string                `json:"remark,omitempty"`
	Lines          []ReceiptLineResponse `json:"lines"`
	CreatedAt      time.Time             `json:"created_at"`
}

// ReceiptLineResponse is one receipt line in API responses
type ReceiptLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Category    string          `json:"category,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// NewReceiptResponse maps a receipt aggregate to its response
func NewReceiptResponse(receipt *ledger.InwardReceipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		lines = append(lines, ReceiptLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			SKU:         line.SKU,
			WarehouseID: line.WarehouseID,
			Quantity:    line.Quantity,
			Category:    line.Category,
			Color:       line.Color,
		})
	}
	return ReceiptResponse{
		ID:             receipt.ID,
		OrderNumber:    receipt.OrderNumber,
		InvoiceNumbers: receipt.InvoiceNumbers,
		CompanyName:    receipt.CompanyName,
		ReceivedAt:     receipt.ReceivedAt,
		Remark:         receipt.Remark,
		Lines:          lines,
		CreatedAt:      receipt.CreatedAt,
	}
}

// AllocateRequest asks for an outward dispatch against the ledger
type AllocateRequest struct {
	WarehouseID  uuid.UUID       `json:"warehouse_id" binding:"required"`
	ProductID    *uuid.UUID      `json:"product_id,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Reference    string          `json:"reference,omitempty"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
	Remark       string          `json:"remark,omitempty"`
}

// DispatchResponse is an outward dispatch in API responses
type DispatchResponse struct {
	ID           uuid.UUID             `json:"id"`
	WarehouseID  uuid.UUID             `json:"warehouse_id"`
	ProductID    *uuid.UUID            `json:"product_id,omitempty"`
	SKU          string                `json:"sku,omitempty"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Reference    string                `json:"reference,omitempty"`
	Status       ledger.DispatchStatus `json:"status"`
	MatchMode    ledger.MatchMode      `json:"match_mode"`
	DispatchedAt time.Time             `json:"dispatched_at"`
	Consumptions []ConsumptionResponse `json:"consumptions,omitempty"`
}

// ConsumptionResponse is one entry consumption in API responses
type ConsumptionResponse struct {
	EntryID        uuid.UUID       `json:"entry_id"`
	ReceiptID      uuid.UUID       `json:"receipt_id"`
	Consumed       decimal.Decimal `json:"consumed"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
}

// NewDispatchResponse maps a dispatch and its allocation to a response
func NewDispatchResponse(dispatch *ledger.OutwardDispatch, result *ledger.AllocationResult) DispatchResponse {
	resp := DispatchResponse{
		ID:           dispatch.ID,
		WarehouseID:  dispatch.WarehouseID,
		ProductID:    dispatch.ProductID,
		SKU:          dispatch.SKU,
		Quantity:     dispatch.Quantity,
		Reference:    dispatch.Reference,
		Status:       dispatch.Status,
		MatchMode:    dispatch.Key().Mode(),
		DispatchedAt: dispatch.DispatchedAt,
	}
	if result != nil {
		for _, c := range result.Consumptions {
			resp.Consumptions = append(resp.Consumptions, ConsumptionResponse{
				EntryID:        c.EntryID,
				ReceiptID:      c.ReceiptID,
				Consumed:       c.Consumed,
				RemainingAfter: c.RemainingAfter,
			})
		}
	}
	return resp
}

// EditDispatchRequest changes the quantity of an existing dispatch
type EditDispatchRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Remark   string          `json:"remark,omitempty"`
}

// AvailabilityResponse reports allocatable stock for one product key
type AvailabilityResponse struct {
	WarehouseID uuid.UUID        `json:"warehouse_id"`
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	SKU         string           `json:"sku,omitempty"`
	MatchMode   ledger.MatchMode `json:"match_mode"`
	Available   decimal.Decimal  `json:"available"`
	EntryCount  int              `json:"entry_count"`
}

// ListFilter carries common pagination and ordering parameters
type ListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the request filter to a repository filter
func (f ListFilter) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	return filter
}

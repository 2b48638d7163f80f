package trade

import (
	"time"

	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line on a new purchase order
type OrderItemRequest struct {
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	SKU             string          `json:"sku,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
	OrderedQuantity decimal.Decimal `json:"ordered_quantity" binding:"required"`
}

// CreateOrderRequest creates a purchase order with its items
type CreateOrderRequest struct {
	OrderNumber  string             `json:"order_number" binding:"required"`
	SupplierName string             `json:"supplier_name,omitempty"`
	OrderedAt    *time.Time         `json:"ordered_at,omitempty"`
	Remark       string             `json:"remark,omitempty"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	SKU             string          `json:"sku,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
	OrderedQuantity decimal.Decimal `json:"ordered_quantity"`
}

// OrderResponse is a purchase order in API responses
type OrderResponse struct {
	ID           uuid.UUID                 `json:"id"`
	OrderNumber  string                    `json:"order_number"`
	SupplierName string                    `json:"supplier_name,omitempty"`
	Status       trade.PurchaseOrderStatus `json:"status"`
	OrderedAt    time.Time                 `json:"ordered_at"`
	Remark       string                    `json:"remark,omitempty"`
	Items        []OrderItemResponse       `json:"items"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// NewOrderResponse maps an order aggregate to its response
func NewOrderResponse(order *trade.PurchaseOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			SKU:             item.SKU,
			ProductName:     item.ProductName,
			OrderedQuantity: item.OrderedQuantity,
		})
	}
	return OrderResponse{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		SupplierName: order.SupplierName,
		Status:       order.Status,
		OrderedAt:    order.OrderedAt,
		Remark:       order.Remark,
		Items:        items,
		CreatedAt:    order.CreatedAt,
	}
}

// CommitmentResponse is one order line's commitment in API responses
type CommitmentResponse struct {
	OrderNumber     string          `json:"order_number"`
	OrderLineID     string          `json:"order_line_id"`
	SKU             string          `json:"sku,omitempty"`
	Ordered         decimal.Decimal `json:"ordered"`
	AlreadyInwarded decimal.Decimal `json:"already_inwarded"`
	InTransit       decimal.Decimal `json:"in_transit"`
	Committed       decimal.Decimal `json:"committed"`
	Remaining       decimal.Decimal `json:"remaining"`
}

// NewCommitmentResponse maps a line commitment to its response
func NewCommitmentResponse(c trade.LineCommitment) CommitmentResponse {
	return CommitmentResponse{
		OrderNumber:     c.OrderNumber,
		OrderLineID:     c.OrderLineID,
		SKU:             c.SKU,
		Ordered:         c.Ordered,
		AlreadyInwarded: c.AlreadyInwarded,
		InTransit:       c.InTransit,
		Committed:       c.Committed(),
		Remaining:       c.Remaining(),
	}
}

// PickupLineRequest is one product position on a new pickup
type PickupLineRequest struct {
	OrderLineID *uuid.UUID      `json:"order_line_id,omitempty"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// RecordPickupRequest records goods collected from the supplier
type RecordPickupRequest struct {
	OrderID    uuid.UUID           `json:"order_id" binding:"required"`
	PickedUpAt *time.Time          `json:"picked_up_at,omitempty"`
	Remark     string              `json:"remark,omitempty"`
	Lines      []PickupLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CompletePickupRequest turns an arrived pickup into an inward receipt
type CompletePickupRequest struct {
	WarehouseID    uuid.UUID  `json:"warehouse_id" binding:"required"`
	InvoiceNumbers []string   `json:"invoice_numbers,omitempty"`
	CompanyName    string     `json:"company_name,omitempty"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
	Remark         string     `json:"remark,omitempty"`
}

// PickupLineResponse is one pickup line in API responses
type PickupLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderLineID *uuid.UUID      `json:"order_line_id,omitempty"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// PickupResponse is a pickup in API responses
type PickupResponse struct {
	ID          uuid.UUID            `json:"id"`
	OrderID     uuid.UUID            `json:"order_id"`
	OrderNumber string               `json:"order_number,omitempty"`
	Status      trade.PickupStatus   `json:"status"`
	PickedUpAt  time.Time            `json:"picked_up_at"`
	Remark      string               `json:"remark,omitempty"`
	Lines       []PickupLineResponse `json:"lines"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewPickupResponse maps a pickup aggregate to its response
func NewPickupResponse(pickup *trade.Pickup) PickupResponse {
	lines := make([]PickupLineResponse, 0, len(pickup.Lines))
	for _, line := range pickup.Lines {
		lines = append(lines, PickupLineResponse{
			ID:          line.ID,
			OrderLineID: line.OrderLineID,
			ProductID:   line.ProductID,
			SKU:         line.SKU,
			Quantity:    line.Quantity,
		})
	}
	return PickupResponse{
		ID:          pickup.ID,
		OrderID:     pickup.OrderID,
		OrderNumber: pickup.OrderNumber,
		Status:      pickup.Status,
		PickedUpAt:  pickup.PickedUpAt,
		Remark:      pickup.Remark,
		Lines:       lines,
		CreatedAt:   pickup.CreatedAt,
	}
}

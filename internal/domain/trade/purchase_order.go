package trade

import (
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen      PurchaseOrderStatus = "OPEN"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusOpen, PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanCommit returns true if new stock may still be claimed against the order
func (s PurchaseOrderStatus) CanCommit() bool {
	return s == PurchaseOrderStatusOpen
}

// PurchaseOrderItem is a line item on a purchase order. OrderedQuantity is
// the ceiling every inward receipt and pickup against this line is validated
// against.
type PurchaseOrderItem struct {
	shared.BaseEntity
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	SKU             string          `gorm:"size:100;index" json:"sku"`
	ProductName     string          `gorm:"size:200" json:"product_name,omitempty"`
	OrderedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"ordered_quantity"`
	Remark          string          `gorm:"size:500" json:"remark,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// PurchaseOrder is a supplier order whose lines cap how much stock may be
// inwarded or put in transit against it.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string              `gorm:"size:100;not null;uniqueIndex" json:"order_number"`
	SupplierName string              `gorm:"size:200" json:"supplier_name,omitempty"`
	Status       PurchaseOrderStatus `gorm:"size:20;not null;default:'OPEN'" json:"status"`
	OrderedAt    time.Time           `gorm:"not null" json:"ordered_at"`
	Remark       string              `gorm:"size:500" json:"remark,omitempty"`

	Items []PurchaseOrderItem `gorm:"foreignKey:OrderID" json:"items"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new open purchase order
func NewPurchaseOrder(orderNumber, supplierName string, orderedAt time.Time) (*PurchaseOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if orderedAt.IsZero() {
		orderedAt = time.Now()
	}
	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierName:      strings.TrimSpace(supplierName),
		Status:            PurchaseOrderStatusOpen,
		OrderedAt:         orderedAt,
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// AddItem appends a line item to the order
func (o *PurchaseOrder) AddItem(productID *uuid.UUID, sku, productName string, orderedQuantity decimal.Decimal) (*PurchaseOrderItem, error) {
	sku = strings.TrimSpace(sku)
	if productID == nil && sku == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Order item requires a product or SKU")
	}
	if orderedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	item := PurchaseOrderItem{
		BaseEntity:      shared.NewBaseEntity(),
		OrderID:         o.ID,
		ProductID:       productID,
		SKU:             sku,
		ProductName:     strings.TrimSpace(productName),
		OrderedQuantity: orderedQuantity,
	}
	o.Items = append(o.Items, item)
	return &o.Items[len(o.Items)-1], nil
}

// Complete marks the order as fully received
func (o *PurchaseOrder) Complete() error {
	if o.Status != PurchaseOrderStatusOpen {
		return shared.ErrInvalidState
	}
	o.Status = PurchaseOrderStatusCompleted
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, PurchaseOrderStatusOpen, PurchaseOrderStatusCompleted))
	return nil
}

// Cancel closes the order before all goods arrived
func (o *PurchaseOrder) Cancel() error {
	if o.Status != PurchaseOrderStatusOpen {
		return shared.ErrInvalidState
	}
	o.Status = PurchaseOrderStatusCancelled
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, PurchaseOrderStatusOpen, PurchaseOrderStatusCancelled))
	return nil
}

// FindItem locates a line item by ID
func (o *PurchaseOrder) FindItem(itemID uuid.UUID) *PurchaseOrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// MatchItem locates the first line item a product or SKU belongs to. An
// exact product match wins; otherwise the item SKU must equal the given SKU
// case-insensitively.
func (o *PurchaseOrder) MatchItem(productID *uuid.UUID, sku string) *PurchaseOrderItem {
	items := o.MatchItems(productID, sku)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

// MatchItems collects every line item a product or SKU belongs to. Orders
// can split one product over several lines, and a claim that names no line
// counts against all of them together. Product matches win; SKU equality is
// only consulted when no item carries the product.
func (o *PurchaseOrder) MatchItems(productID *uuid.UUID, sku string) []*PurchaseOrderItem {
	var matched []*PurchaseOrderItem
	if productID != nil {
		for i := range o.Items {
			if o.Items[i].ProductID != nil && *o.Items[i].ProductID == *productID {
				matched = append(matched, &o.Items[i])
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	if sku != "" {
		for i := range o.Items {
			if strings.EqualFold(o.Items[i].SKU, sku) {
				matched = append(matched, &o.Items[i])
			}
		}
	}
	return matched
}

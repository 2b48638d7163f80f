package ledger

import (
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DispatchStatus represents the status of an outward dispatch
type DispatchStatus string

const (
	DispatchStatusActive   DispatchStatus = "ACTIVE"
	DispatchStatusReversed DispatchStatus = "REVERSED"
)

// IsValid checks if the status is a valid DispatchStatus
func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchStatusActive, DispatchStatusReversed:
		return true
	}
	return false
}

// OutwardDispatch is one outward movement of stock: goods leaving a
// warehouse for a customer or another site. Its Quantity is always fully
// backed by allocation records; a dispatch that cannot be covered is refused
// outright rather than recorded short.
type OutwardDispatch struct {
	shared.BaseAggregateRoot
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	SKU          string          `gorm:"size:100;index" json:"sku,omitempty"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Reference    string          `gorm:"size:200" json:"reference,omitempty"`
	Status       DispatchStatus  `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	DispatchedAt time.Time       `gorm:"not null;index" json:"dispatched_at"`
	Remark       string          `gorm:"size:500" json:"remark,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (OutwardDispatch) TableName() string {
	return "outward_dispatches"
}

// NewOutwardDispatch creates an active dispatch
func NewOutwardDispatch(warehouseID uuid.UUID, productID *uuid.UUID, sku string, quantity decimal.Decimal, reference string, dispatchedAt time.Time) (*OutwardDispatch, error) {
	sku = strings.TrimSpace(sku)
	if warehouseID == uuid.Nil {
		return nil, NewValidationError("warehouse_id", "dispatch requires a warehouse")
	}
	if productID == nil && sku == "" {
		return nil, NewValidationError("product", "dispatch requires a product or SKU")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("quantity", "dispatch quantity must be positive")
	}
	if dispatchedAt.IsZero() {
		dispatchedAt = time.Now()
	}
	return &OutwardDispatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		ProductID:         productID,
		SKU:               sku,
		Quantity:          quantity,
		Reference:         strings.TrimSpace(reference),
		Status:            DispatchStatusActive,
		DispatchedAt:      dispatchedAt,
	}, nil
}

// Key returns the product identity the dispatch draws against
func (d *OutwardDispatch) Key() ProductKey {
	return NewProductKey(d.ProductID, d.SKU)
}

// MarkReversed flags the dispatch as fully undone
func (d *OutwardDispatch) MarkReversed() error {
	if d.Status != DispatchStatusActive {
		return shared.ErrInvalidState
	}
	d.Status = DispatchStatusReversed
	return nil
}

// Reactivate returns a reversed dispatch to active, used when an edit
// re-allocates it with a new quantity
func (d *OutwardDispatch) Reactivate(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("quantity", "dispatch quantity must be positive")
	}
	d.Quantity = quantity
	d.Status = DispatchStatusActive
	return nil
}

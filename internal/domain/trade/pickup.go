package trade

import (
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PickupStatus represents the status of a pickup
type PickupStatus string

const (
	// PickupStatusInTransit means the goods left the supplier but have not
	// been inwarded yet. In-transit quantities count against the order
	// commitment and surface as an overlay on the stock summary.
	PickupStatusInTransit PickupStatus = "IN_TRANSIT"
	PickupStatusCompleted PickupStatus = "COMPLETED"
	PickupStatusCancelled PickupStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PickupStatus
func (s PickupStatus) IsValid() bool {
	switch s {
	case PickupStatusInTransit, PickupStatusCompleted, PickupStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PickupStatus
func (s PickupStatus) String() string {
	return string(s)
}

// PickupLine is one product position on a pickup
type PickupLine struct {
	shared.BaseEntity
	PickupID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"pickup_id"`
	OrderLineID *uuid.UUID      `gorm:"type:uuid;index" json:"order_line_id,omitempty"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	SKU         string          `gorm:"size:100;index" json:"sku,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (PickupLine) TableName() string {
	return "pickup_lines"
}

// Pickup is a collection of goods collected from the supplier against an
// order. While in transit its quantities are committed but not yet ledger
// stock; completing the pickup hands the lines to the inward flow.
type Pickup struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_id"`
	OrderNumber string       `gorm:"size:100;index" json:"order_number"`
	Status      PickupStatus `gorm:"size:20;not null;default:'IN_TRANSIT'" json:"status"`
	PickedUpAt  time.Time    `gorm:"not null" json:"picked_up_at"`
	Remark      string       `gorm:"size:500" json:"remark,omitempty"`

	Lines []PickupLine `gorm:"foreignKey:PickupID" json:"lines"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (Pickup) TableName() string {
	return "pickups"
}

// NewPickup creates an in-transit pickup against an order
func NewPickup(orderID uuid.UUID, orderNumber string, pickedUpAt time.Time) (*Pickup, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Pickup requires an order")
	}
	if pickedUpAt.IsZero() {
		pickedUpAt = time.Now()
	}
	pickup := &Pickup{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderNumber:       strings.TrimSpace(orderNumber),
		Status:            PickupStatusInTransit,
		PickedUpAt:        pickedUpAt,
	}
	pickup.AddDomainEvent(NewPickupRecordedEvent(pickup))
	return pickup, nil
}

// AddLine appends a product position to the pickup
func (p *Pickup) AddLine(orderLineID, productID *uuid.UUID, sku string, quantity decimal.Decimal) (*PickupLine, error) {
	sku = strings.TrimSpace(sku)
	if productID == nil && sku == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Pickup line requires a product or SKU")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Pickup line quantity must be positive")
	}
	line := PickupLine{
		BaseEntity:  shared.NewBaseEntity(),
		PickupID:    p.ID,
		OrderLineID: orderLineID,
		ProductID:   productID,
		SKU:         sku,
		Quantity:    quantity,
	}
	p.Lines = append(p.Lines, line)
	return &p.Lines[len(p.Lines)-1], nil
}

// Complete marks the pickup as arrived. The caller inwards the lines in the
// same transaction so the committed quantity moves from in-transit to
// inwarded without a gap.
func (p *Pickup) Complete() error {
	if p.Status != PickupStatusInTransit {
		return shared.ErrInvalidState
	}
	p.Status = PickupStatusCompleted
	p.AddDomainEvent(NewPickupStatusChangedEvent(p, PickupStatusInTransit, PickupStatusCompleted))
	return nil
}

// Cancel releases the pickup's committed quantity back to the order
func (p *Pickup) Cancel() error {
	if p.Status != PickupStatusInTransit {
		return shared.ErrInvalidState
	}
	p.Status = PickupStatusCancelled
	p.AddDomainEvent(NewPickupStatusChangedEvent(p, PickupStatusInTransit, PickupStatusCancelled))
	return nil
}

// IsInTransit reports whether the pickup still counts as in transit
func (p *Pickup) IsInTransit() bool {
	return p.Status == PickupStatusInTransit
}

// TotalQuantity sums all line quantities
func (p *Pickup) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}

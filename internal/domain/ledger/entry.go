package ledger

import (
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry is one inward-transaction-derived record of available quantity
// for a product in a warehouse. It is the aggregate root of the stock ledger:
// entries are created exactly once per receipt line, consumed oldest-first by
// the allocator, and restored newest-first by the reversal processor.
//
// Invariant: RemainingStock = QuantityInward - QuantityOutward and is never
// negative. QuantityInward is fixed at creation.
type LedgerEntry struct {
	shared.BaseAggregateRoot
	ReceiptID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReceiptLineID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	ProductID     *uuid.UUID `gorm:"type:uuid;index:idx_ledger_entry_product_warehouse,priority:1"`
	SKU           string     `gorm:"type:varchar(100);not null;index"`
	WarehouseID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_entry_product_warehouse,priority:2"`

	QuantityInward  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityOutward decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;index"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a ledger entry for one receipt line.
// Either a product reference or a non-empty SKU is required; the warehouse is
// always required because an entry without a stock location cannot exist.
func NewLedgerEntry(receiptID, receiptLineID uuid.UUID, productID *uuid.UUID, sku string, warehouseID uuid.UUID, quantity decimal.Decimal) (*LedgerEntry, error) {
	if warehouseID == uuid.Nil {
		return nil, NewValidationError("warehouse_id", "warehouse is required")
	}
	if (productID == nil || *productID == uuid.Nil) && sku == "" {
		return nil, NewValidationError("product", "a product reference or SKU is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("quantity", "inward quantity must be positive")
	}

	entry := &LedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptID:         receiptID,
		ReceiptLineID:     receiptLineID,
		ProductID:         productID,
		SKU:               sku,
		WarehouseID:       warehouseID,
		QuantityInward:    quantity,
		QuantityOutward:   decimal.Zero,
		RemainingStock:    quantity,
	}
	entry.AddDomainEvent(NewEntryCreatedEvent(entry))

	return entry, nil
}

// Consume deducts up to the requested quantity from the entry and returns the
// amount actually taken (min of remaining stock and requested).
func (e *LedgerEntry) Consume(quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) || e.RemainingStock.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	taken := decimal.Min(quantity, e.RemainingStock)
	e.QuantityOutward = e.QuantityOutward.Add(taken)
	e.RemainingStock = e.QuantityInward.Sub(e.QuantityOutward)
	e.UpdatedAt = time.Now()
	return taken
}

// Restore returns previously consumed quantity to the entry and reports the
// amount actually restored (min of consumed quantity and requested).
func (e *LedgerEntry) Restore(quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) || e.QuantityOutward.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	restored := decimal.Min(quantity, e.QuantityOutward)
	e.QuantityOutward = e.QuantityOutward.Sub(restored)
	e.RemainingStock = e.QuantityInward.Sub(e.QuantityOutward)
	e.UpdatedAt = time.Now()
	return restored
}

// IsUntouched returns true if nothing has ever been consumed from the entry.
// Only untouched entries may be soft-removed when their receipt is deleted.
func (e *LedgerEntry) IsUntouched() bool {
	return e.QuantityOutward.IsZero()
}

// HasStock returns true if the entry has remaining quantity
func (e *LedgerEntry) HasStock() bool {
	return e.RemainingStock.GreaterThan(decimal.Zero)
}

// Key returns the product key of the entry
func (e *LedgerEntry) Key() ProductKey {
	return ProductKey{ProductID: e.ProductID, SKU: e.SKU}
}

// TotalRemaining sums the remaining stock over a set of entries. The result
// equals the available-for-dispatch quantity for the entries' product and
// warehouse pair.
func TotalRemaining(entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range entries {
		total = total.Add(entries[i].RemainingStock)
	}
	return total
}

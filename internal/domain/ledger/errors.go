package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance applied to quantity comparisons in availability
// pre-checks and the commitment gate. Quantities arrive from spreadsheets and
// manual entry as floating-point values, so gates must not reject on
// sub-milliunit noise.
var Epsilon = decimal.New(1, -3) // 0.001

// ValidationError reports a missing or malformed identifying field. It is
// raised before any ledger mutation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError reports an outward request that exceeds the summed
// remaining stock for its (product, warehouse) pair. It carries the figures
// so callers can render the shortfall rather than a generic failure.
type InsufficientStockError struct {
	Key         ProductKey      `json:"-"`
	SKU         string          `json:"sku"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s in warehouse %s: requested %s, available %s",
		e.Key.String(), e.WarehouseID, e.Requested.String(), e.Available.String())
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(key ProductKey, warehouseID uuid.UUID, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		Key:         key,
		SKU:         key.SKU,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}

// CommitmentExceededError reports a proposed reservation that would push the
// total committed quantity of an order line past its ordered quantity.
type CommitmentExceededError struct {
	OrderNumber     string          `json:"order_number"`
	SKU             string          `json:"sku"`
	Ordered         decimal.Decimal `json:"ordered"`
	AlreadyInwarded decimal.Decimal `json:"already_inwarded"`
	InTransit       decimal.Decimal `json:"in_transit"`
	Proposed        decimal.Decimal `json:"proposed"`
}

// Committed returns the quantity already claimed against the order line
func (e *CommitmentExceededError) Committed() decimal.Decimal {
	return e.AlreadyInwarded.Add(e.InTransit)
}

// Error implements the error interface
func (e *CommitmentExceededError) Error() string {
	return fmt.Sprintf("commitment exceeded on order %s for %s: ordered %s, already inwarded %s, in transit %s, proposed %s",
		e.OrderNumber, e.SKU, e.Ordered.String(), e.AlreadyInwarded.String(), e.InTransit.String(), e.Proposed.String())
}

// ConflictError reports an attempt to remove an inward transaction whose
// entries have already been consumed from. It names the dependent entries.
type ConflictError struct {
	ReceiptID       uuid.UUID       `json:"receipt_id"`
	ConsumedEntries []uuid.UUID     `json:"consumed_entries"`
	ConsumedTotal   decimal.Decimal `json:"consumed_total"`
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	ids := make([]string, len(e.ConsumedEntries))
	for i, id := range e.ConsumedEntries {
		ids[i] = id.String()
	}
	return fmt.Sprintf("receipt %s cannot be removed: %s units already dispatched from entries [%s]",
		e.ReceiptID, e.ConsumedTotal.String(), strings.Join(ids, ", "))
}

// NotFoundError reports a missing order, product, entry, or receipt
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ExceedsWithTolerance reports whether a exceeds b by more than Epsilon
func ExceedsWithTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).GreaterThan(Epsilon)
}

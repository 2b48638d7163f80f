package trade

import (
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// LineCommitment is how much of one order line has already been claimed,
// split into goods that arrived and goods still on the road.
type LineCommitment struct {
	OrderNumber     string          `json:"order_number"`
	OrderLineID     string          `json:"order_line_id"`
	SKU             string          `json:"sku"`
	Ordered         decimal.Decimal `json:"ordered"`
	AlreadyInwarded decimal.Decimal `json:"already_inwarded"`
	InTransit       decimal.Decimal `json:"in_transit"`
}

// Committed is the total quantity already claimed against the line
func (c LineCommitment) Committed() decimal.Decimal {
	return c.AlreadyInwarded.Add(c.InTransit)
}

// Remaining is the quantity still open for new receipts or pickups. It can
// go negative when historical data overshoots the order.
func (c LineCommitment) Remaining() decimal.Decimal {
	return c.Ordered.Sub(c.Committed())
}

// Validate checks a proposed additional quantity against the line. The
// proposal passes when committed plus proposed stays within the ordered
// quantity, give or take the rounding tolerance.
func (c LineCommitment) Validate(proposed decimal.Decimal) error {
	if proposed.LessThanOrEqual(decimal.Zero) {
		return ledger.NewValidationError("quantity", "proposed quantity must be positive")
	}
	if ledger.ExceedsWithTolerance(c.Committed().Add(proposed), c.Ordered) {
		return &ledger.CommitmentExceededError{
			OrderNumber:     c.OrderNumber,
			SKU:             c.SKU,
			Ordered:         c.Ordered,
			AlreadyInwarded: c.AlreadyInwarded,
			InTransit:       c.InTransit,
			Proposed:        proposed,
		}
	}
	return nil
}

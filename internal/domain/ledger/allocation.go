package ledger

import (
	"sort"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Consumption records how much was taken from a single ledger entry during
// an allocation. The set of consumptions forms the audit trail of a dispatch.
type Consumption struct {
	EntryID        uuid.UUID       `json:"entry_id"`
	ReceiptID      uuid.UUID       `json:"receipt_id"`
	Consumed       decimal.Decimal `json:"consumed"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
	FullyConsumed  bool            `json:"fully_consumed"`
}

// AllocationResult is the outcome of selecting ledger entries for an outward
// request. RemainingQuantity > 0 means the supply could not cover the request;
// the allocator refuses to apply such a result.
type AllocationResult struct {
	Consumptions      []Consumption   `json:"consumptions"`
	TotalConsumed     decimal.Decimal `json:"total_consumed"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	FullyFulfilled    bool            `json:"fully_fulfilled"`
	MatchMode         MatchMode       `json:"match_mode"`
}

// AllocationStrategy selects which ledger entries satisfy an outward request
// and how much to take from each. Selection does not mutate the entries;
// ApplyAllocation executes a result against them.
type AllocationStrategy interface {
	strategy.Strategy
	SelectEntries(requested decimal.Decimal, entries []LedgerEntry) (*AllocationResult, error)
}

// FIFOAllocationStrategy consumes the oldest ledger entries first, ordered by
// creation time. This is the only consumption order the engine supports: the
// oldest stock is always promised first so that reported allocations stay
// stable as new stock arrives.
type FIFOAllocationStrategy struct {
	strategy.BaseStrategy
	mode MatchMode
}

// NewFIFOAllocationStrategy creates a FIFO allocation strategy
func NewFIFOAllocationStrategy(mode MatchMode) *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_allocation",
			strategy.StrategyTypeAllocation,
			"FIFO allocation - consumes the oldest ledger entries first by creation time",
		),
		mode: mode,
	}
}

// SelectEntries walks entries with remaining stock oldest-first and takes
// min(entry remaining, still needed) from each until the request is satisfied
// or the entries are exhausted.
func (s *FIFOAllocationStrategy) SelectEntries(requested decimal.Decimal, entries []LedgerEntry) (*AllocationResult, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	available := make([]LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.HasStock() {
			available = append(available, entry)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].CreatedAt.Before(available[j].CreatedAt)
	})

	consumptions := make([]Consumption, 0, len(available))
	remaining := requested
	total := decimal.Zero

	for _, entry := range available {
		if remaining.IsZero() {
			break
		}
		taken := decimal.Min(remaining, entry.RemainingStock)
		remainingAfter := entry.RemainingStock.Sub(taken)
		consumptions = append(consumptions, Consumption{
			EntryID:        entry.ID,
			ReceiptID:      entry.ReceiptID,
			Consumed:       taken,
			RemainingAfter: remainingAfter,
			FullyConsumed:  remainingAfter.IsZero(),
		})
		total = total.Add(taken)
		remaining = remaining.Sub(taken)
	}

	return &AllocationResult{
		Consumptions:      consumptions,
		TotalConsumed:     total,
		RemainingQuantity: remaining,
		FullyFulfilled:    remaining.IsZero(),
		MatchMode:         s.mode,
	}, nil
}

// ApplyAllocation executes an allocation result against the live entries.
// The entries must be the same set the result was computed from; a mismatch
// between computed and actual consumption is a concurrency fault.
func ApplyAllocation(entries []*LedgerEntry, result *AllocationResult) error {
	if result == nil {
		return shared.NewDomainError("INVALID_RESULT", "Allocation result cannot be nil")
	}

	byID := make(map[uuid.UUID]*LedgerEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	for _, c := range result.Consumptions {
		entry, ok := byID[c.EntryID]
		if !ok {
			return shared.NewDomainError("ENTRY_NOT_FOUND", "Ledger entry not found: "+c.EntryID.String())
		}
		taken := entry.Consume(c.Consumed)
		if !taken.Equal(c.Consumed) {
			return shared.ErrConcurrencyConflict
		}
	}

	return nil
}

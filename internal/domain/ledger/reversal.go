package ledger

import (
	"sort"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restoration records how much stock was put back on a single ledger entry
// when an outward movement is reduced or undone.
type Restoration struct {
	EntryID       uuid.UUID       `json:"entry_id"`
	Restored      decimal.Decimal `json:"restored"`
	RemainingGoal decimal.Decimal `json:"remaining_goal"`
}

// ReversalResult is the outcome of selecting ledger entries for a reversal.
type ReversalResult struct {
	Restorations  []Restoration   `json:"restorations"`
	TotalRestored decimal.Decimal `json:"total_restored"`
	Shortfall     decimal.Decimal `json:"shortfall"`
}

// ReversalStrategy decides which entries receive restored stock and how much
// each gets back.
type ReversalStrategy interface {
	strategy.Strategy
	SelectRestorations(amount decimal.Decimal, entries []LedgerEntry) (*ReversalResult, error)
}

// LIFOReversalStrategy restores stock to the most recently consumed entries
// first, ordered by creation time descending. Reversal is the mirror image of
// FIFO consumption: the last batch to be drawn down is the first to be
// replenished, so after a full reversal every entry is back to the state it
// held before the allocation.
type LIFOReversalStrategy struct {
	strategy.BaseStrategy
}

// NewLIFOReversalStrategy creates a LIFO reversal strategy
func NewLIFOReversalStrategy() *LIFOReversalStrategy {
	return &LIFOReversalStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"lifo_reversal",
			strategy.StrategyTypeReversal,
			"LIFO reversal - restores the newest consumed entries first by creation time",
		),
	}
}

// SelectRestorations walks consumed entries newest-first and gives back
// min(entry outward, still owed) to each until the amount is fully restored.
func (s *LIFOReversalStrategy) SelectRestorations(amount decimal.Decimal, entries []LedgerEntry) (*ReversalResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reversal amount must be positive")
	}

	consumed := make([]LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.QuantityOutward.GreaterThan(decimal.Zero) {
			consumed = append(consumed, entry)
		}
	}
	sort.Slice(consumed, func(i, j int) bool {
		return consumed[i].CreatedAt.After(consumed[j].CreatedAt)
	})

	restorations := make([]Restoration, 0, len(consumed))
	remaining := amount
	total := decimal.Zero

	for _, entry := range consumed {
		if remaining.IsZero() {
			break
		}
		restored := decimal.Min(remaining, entry.QuantityOutward)
		restorations = append(restorations, Restoration{
			EntryID:       entry.ID,
			Restored:      restored,
			RemainingGoal: entry.RemainingStock.Add(restored),
		})
		total = total.Add(restored)
		remaining = remaining.Sub(restored)
	}

	return &ReversalResult{
		Restorations:  restorations,
		TotalRestored: total,
		Shortfall:     remaining,
	}, nil
}

// ApplyReversal executes a reversal result against the live entries.
func ApplyReversal(entries []*LedgerEntry, result *ReversalResult) error {
	if result == nil {
		return shared.NewDomainError("INVALID_RESULT", "Reversal result cannot be nil")
	}

	byID := make(map[uuid.UUID]*LedgerEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	for _, r := range result.Restorations {
		entry, ok := byID[r.EntryID]
		if !ok {
			return shared.NewDomainError("ENTRY_NOT_FOUND", "Ledger entry not found: "+r.EntryID.String())
		}
		restored := entry.Restore(r.Restored)
		if !restored.Equal(r.Restored) {
			return shared.ErrConcurrencyConflict
		}
	}

	return nil
}

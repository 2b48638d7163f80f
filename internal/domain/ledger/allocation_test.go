package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOAllocationStrategy(t *testing.T) {
	strategy := NewFIFOAllocationStrategy(MatchModeProduct)

	t.Run("strategy metadata is correct", func(t *testing.T) {
		assert.Equal(t, "fifo_allocation", strategy.Name())
		assert.NotEmpty(t, strategy.Description())
	})

	t.Run("returns error for non-positive quantity", func(t *testing.T) {
		entries := []LedgerEntry{createTestEntry(t, "SKU-1", 100, time.Now())}
		_, err := strategy.SelectEntries(decimal.Zero, entries)
		assert.Error(t, err)
	})

	t.Run("consumes oldest entries first", func(t *testing.T) {
		t1 := time.Now().Add(-48 * time.Hour)
		t2 := time.Now().Add(-24 * time.Hour)
		older := createTestEntry(t, "SKU-1", 50, t1)
		newer := createTestEntry(t, "SKU-1", 30, t2)

		// Pass newest first to prove the strategy sorts by creation time.
		result, err := strategy.SelectEntries(decimal.NewFromInt(60), []LedgerEntry{newer, older})
		require.NoError(t, err)

		require.Len(t, result.Consumptions, 2)
		assert.Equal(t, older.ID, result.Consumptions[0].EntryID)
		assert.True(t, result.Consumptions[0].Consumed.Equal(decimal.NewFromInt(50)))
		assert.True(t, result.Consumptions[0].FullyConsumed)
		assert.Equal(t, newer.ID, result.Consumptions[1].EntryID)
		assert.True(t, result.Consumptions[1].Consumed.Equal(decimal.NewFromInt(10)))
		assert.True(t, result.Consumptions[1].RemainingAfter.Equal(decimal.NewFromInt(20)))
		assert.True(t, result.FullyFulfilled)
		assert.True(t, result.RemainingQuantity.IsZero())
	})

	t.Run("reports shortfall without partial pretence", func(t *testing.T) {
		entries := []LedgerEntry{createTestEntry(t, "SKU-1", 40, time.Now())}
		result, err := strategy.SelectEntries(decimal.NewFromInt(55), entries)
		require.NoError(t, err)
		assert.False(t, result.FullyFulfilled)
		assert.True(t, result.TotalConsumed.Equal(decimal.NewFromInt(40)))
		assert.True(t, result.RemainingQuantity.Equal(decimal.NewFromInt(15)))
	})

	t.Run("skips exhausted entries", func(t *testing.T) {
		empty := createTestEntry(t, "SKU-1", 20, time.Now().Add(-48*time.Hour))
		empty.Consume(decimal.NewFromInt(20))
		live := createTestEntry(t, "SKU-1", 30, time.Now())

		result, err := strategy.SelectEntries(decimal.NewFromInt(10), []LedgerEntry{empty, live})
		require.NoError(t, err)
		require.Len(t, result.Consumptions, 1)
		assert.Equal(t, live.ID, result.Consumptions[0].EntryID)
	})
}

func TestApplyAllocation(t *testing.T) {
	t.Run("mutates entries to match the computed result", func(t *testing.T) {
		strategy := NewFIFOAllocationStrategy(MatchModeProduct)
		e1 := createTestEntry(t, "SKU-1", 50, time.Now().Add(-time.Hour))
		e2 := createTestEntry(t, "SKU-1", 30, time.Now())

		result, err := strategy.SelectEntries(decimal.NewFromInt(60), []LedgerEntry{e1, e2})
		require.NoError(t, err)

		require.NoError(t, ApplyAllocation([]*LedgerEntry{&e1, &e2}, result))
		assert.True(t, e1.RemainingStock.IsZero())
		assert.True(t, e2.RemainingStock.Equal(decimal.NewFromInt(20)))
	})

	t.Run("fails when an entry changed underneath the result", func(t *testing.T) {
		strategy := NewFIFOAllocationStrategy(MatchModeProduct)
		e1 := createTestEntry(t, "SKU-1", 50, time.Now())

		result, err := strategy.SelectEntries(decimal.NewFromInt(50), []LedgerEntry{e1})
		require.NoError(t, err)

		// A concurrent dispatch drained part of the entry after selection.
		e1.Consume(decimal.NewFromInt(10))
		err = ApplyAllocation([]*LedgerEntry{&e1}, result)
		assert.Error(t, err)
	})
}

package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLIFOReversalStrategy(t *testing.T) {
	strategy := NewLIFOReversalStrategy()

	t.Run("returns error for non-positive amount", func(t *testing.T) {
		_, err := strategy.SelectRestorations(decimal.Zero, nil)
		assert.Error(t, err)
	})

	t.Run("restores newest consumed entries first", func(t *testing.T) {
		older := createTestEntry(t, "SKU-1", 50, time.Now().Add(-48*time.Hour))
		newer := createTestEntry(t, "SKU-1", 30, time.Now().Add(-24*time.Hour))
		older.Consume(decimal.NewFromInt(50))
		newer.Consume(decimal.NewFromInt(10))

		result, err := strategy.SelectRestorations(decimal.NewFromInt(10), []LedgerEntry{older, newer})
		require.NoError(t, err)

		require.Len(t, result.Restorations, 1)
		assert.Equal(t, newer.ID, result.Restorations[0].EntryID)
		assert.True(t, result.TotalRestored.Equal(decimal.NewFromInt(10)))
		assert.True(t, result.Shortfall.IsZero())
	})

	t.Run("spills into older entries when the newest is not enough", func(t *testing.T) {
		older := createTestEntry(t, "SKU-1", 50, time.Now().Add(-48*time.Hour))
		newer := createTestEntry(t, "SKU-1", 30, time.Now().Add(-24*time.Hour))
		older.Consume(decimal.NewFromInt(50))
		newer.Consume(decimal.NewFromInt(10))

		result, err := strategy.SelectRestorations(decimal.NewFromInt(25), []LedgerEntry{newer, older})
		require.NoError(t, err)

		require.Len(t, result.Restorations, 2)
		assert.Equal(t, newer.ID, result.Restorations[0].EntryID)
		assert.True(t, result.Restorations[0].Restored.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, older.ID, result.Restorations[1].EntryID)
		assert.True(t, result.Restorations[1].Restored.Equal(decimal.NewFromInt(15)))
	})

	t.Run("reports shortfall when reversal exceeds consumed quantity", func(t *testing.T) {
		entry := createTestEntry(t, "SKU-1", 50, time.Now())
		entry.Consume(decimal.NewFromInt(20))

		result, err := strategy.SelectRestorations(decimal.NewFromInt(30), []LedgerEntry{entry})
		require.NoError(t, err)
		assert.True(t, result.TotalRestored.Equal(decimal.NewFromInt(20)))
		assert.True(t, result.Shortfall.Equal(decimal.NewFromInt(10)))
	})
}

func TestFullReversalUndoesAllocation(t *testing.T) {
	alloc := NewFIFOAllocationStrategy(MatchModeProduct)
	rev := NewLIFOReversalStrategy()

	e1 := createTestEntry(t, "SKU-1", 50, time.Now().Add(-2*time.Hour))
	e2 := createTestEntry(t, "SKU-1", 30, time.Now().Add(-time.Hour))

	allocResult, err := alloc.SelectEntries(decimal.NewFromInt(60), []LedgerEntry{e1, e2})
	require.NoError(t, err)
	require.NoError(t, ApplyAllocation([]*LedgerEntry{&e1, &e2}, allocResult))

	revResult, err := rev.SelectRestorations(decimal.NewFromInt(60), []LedgerEntry{e1, e2})
	require.NoError(t, err)
	require.NoError(t, ApplyReversal([]*LedgerEntry{&e1, &e2}, revResult))

	assert.True(t, e1.IsUntouched())
	assert.True(t, e2.IsUntouched())
	assert.True(t, e1.RemainingStock.Equal(decimal.NewFromInt(50)))
	assert.True(t, e2.RemainingStock.Equal(decimal.NewFromInt(30)))
}

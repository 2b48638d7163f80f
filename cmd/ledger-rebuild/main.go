package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/infrastructure/config"
	"github.com/exportops/backend/internal/infrastructure/logger"
	"github.com/exportops/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ledger-rebuild recomputes QuantityOutward and RemainingStock for every
// ledger entry from the allocation audit trail. Allocation records are
// append-only, so the net consumption of an entry is the sum of its
// allocation quantities minus the sum of its reversal quantities. Entries
// that drifted from that figure are corrected in place.
func main() {
	var (
		dryRun   bool
		logLevel string
	)

	flag.BoolVar(&dryRun, "dry-run", false, "Report drifted entries without writing")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	checked, corrected, err := rebuild(db.DB, log, dryRun)
	if err != nil {
		log.Fatal("Rebuild failed", zap.Error(err))
	}

	log.Info("Rebuild finished",
		zap.Int("entries_checked", checked),
		zap.Int("entries_corrected", corrected),
		zap.Bool("dry_run", dryRun),
	)
}

// netConsumption is the aggregated allocation figure for one entry
type netConsumption struct {
	EntryID  uuid.UUID
	Consumed decimal.Decimal
}

func rebuild(db *gorm.DB, log *zap.Logger, dryRun bool) (checked, corrected int, err error) {
	// Net consumption per entry: allocations count positive, reversals
	// negative.
	var totals []netConsumption
	if err := db.Table("allocation_records").
		Select("entry_id, COALESCE(SUM(CASE WHEN reversal THEN -quantity ELSE quantity END), 0) as consumed").
		Group("entry_id").
		Scan(&totals).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate allocation records: %w", err)
	}

	consumedByEntry := make(map[uuid.UUID]decimal.Decimal, len(totals))
	for _, t := range totals {
		consumedByEntry[t.EntryID] = t.Consumed
	}

	var entries []ledger.LedgerEntry
	if err := db.Where("deleted_at IS NULL").FindInBatches(&entries, 500, func(tx *gorm.DB, _ int) error {
		for i := range entries {
			entry := &entries[i]
			checked++

			consumed := consumedByEntry[entry.ID]
			if consumed.LessThan(decimal.Zero) {
				log.Warn("Entry has negative net consumption, clamping to zero",
					zap.String("entry_id", entry.ID.String()),
					zap.String("consumed", consumed.String()),
				)
				consumed = decimal.Zero
			}
			if consumed.GreaterThan(entry.QuantityInward) {
				log.Warn("Entry consumption exceeds inward quantity, clamping",
					zap.String("entry_id", entry.ID.String()),
					zap.String("inward", entry.QuantityInward.String()),
					zap.String("consumed", consumed.String()),
				)
				consumed = entry.QuantityInward
			}

			remaining := entry.QuantityInward.Sub(consumed)
			if entry.QuantityOutward.Equal(consumed) && entry.RemainingStock.Equal(remaining) {
				continue
			}

			log.Info("Entry drifted from allocation trail",
				zap.String("entry_id", entry.ID.String()),
				zap.String("stored_outward", entry.QuantityOutward.String()),
				zap.String("computed_outward", consumed.String()),
				zap.String("stored_remaining", entry.RemainingStock.String()),
				zap.String("computed_remaining", remaining.String()),
			)
			corrected++

			if dryRun {
				continue
			}

			if err := tx.Model(&ledger.LedgerEntry{}).
				Where("id = ?", entry.ID).
				Updates(map[string]interface{}{
					"quantity_outward": consumed,
					"remaining_stock":  remaining,
					"version":          gorm.Expr("version + 1"),
				}).Error; err != nil {
				return fmt.Errorf("failed to correct entry %s: %w", entry.ID, err)
			}
		}
		return nil
	}).Error; err != nil {
		return checked, corrected, err
	}

	return checked, corrected, nil
}

// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics tracks stock ledger activity: inward ingestion, outward
// allocation, reversals, and stock health gauges.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	receiptIngestedTotal *Counter
	receiptLineSkipped   *Counter
	dispatchAllocated    *Counter
	dispatchReversed     *Counter
	allocationRefused    *Counter
	commitmentRejections *Counter

	// Gauge metrics (point-in-time values)
	lowStockKeys   *Gauge
	outOfStockKeys *Gauge

	lowStockThreshold float64

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides ledger stock data for periodic metrics
// collection. It lets the telemetry layer query stock state without
// depending on the ledger domain directly.
type StockMetricsProvider interface {
	// GetLowStockKeyCount returns, per warehouse, the number of stock keys
	// whose summed remaining quantity is above zero but below the threshold.
	GetLowStockKeyCount(ctx context.Context, threshold float64) (map[uuid.UUID]int64, error)

	// GetOutOfStockKeyCount returns, per warehouse, the number of stock keys
	// whose summed remaining quantity is zero or negative.
	GetOutOfStockKeyCount(ctx context.Context) (map[uuid.UUID]int64, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	LowStockThreshold float64
	StockProvider     StockMetricsProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	var err error

	lm.receiptIngestedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_receipt_ingested_total",
		"Total number of inward receipts ingested",
		"{receipts}",
	)
	if err != nil {
		return nil, err
	}

	lm.receiptLineSkipped, err = NewCounter(
		cfg.Meter,
		"ledger_receipt_line_skipped_total",
		"Total number of receipt lines skipped during ingestion",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	lm.dispatchAllocated, err = NewCounter(
		cfg.Meter,
		"ledger_dispatch_allocated_total",
		"Total number of outward dispatches allocated against the ledger",
		"{dispatches}",
	)
	if err != nil {
		return nil, err
	}

	lm.dispatchReversed, err = NewCounter(
		cfg.Meter,
		"ledger_dispatch_reversed_total",
		"Total number of dispatch allocations reversed",
		"{dispatches}",
	)
	if err != nil {
		return nil, err
	}

	lm.allocationRefused, err = NewCounter(
		cfg.Meter,
		"ledger_allocation_refused_total",
		"Total number of allocations refused for insufficient stock",
		"{dispatches}",
	)
	if err != nil {
		return nil, err
	}

	lm.commitmentRejections, err = NewCounter(
		cfg.Meter,
		"ledger_commitment_rejected_total",
		"Total number of receipt lines rejected for exceeding order commitment",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	lm.lowStockKeys, err = NewGauge(
		cfg.Meter,
		"ledger_low_stock_keys",
		"Number of stock keys below the low stock threshold",
		"{keys}",
	)
	if err != nil {
		return nil, err
	}

	lm.outOfStockKeys, err = NewGauge(
		cfg.Meter,
		"ledger_out_of_stock_keys",
		"Number of stock keys with no remaining quantity",
		"{keys}",
	)
	if err != nil {
		return nil, err
	}

	lm.lowStockThreshold = cfg.LowStockThreshold

	return lm, nil
}

// RecordReceiptIngested records a completed inward receipt ingestion. A
// receipt can span warehouses, so the counter carries no warehouse attribute.
func (lm *LedgerMetrics) RecordReceiptIngested(ctx context.Context) {
	lm.receiptIngestedTotal.Inc(ctx)
}

// RecordReceiptLinesSkipped records the number of lines dropped with a
// skipped receipt.
func (lm *LedgerMetrics) RecordReceiptLinesSkipped(ctx context.Context, skipped int64) {
	if skipped <= 0 {
		return
	}
	lm.receiptLineSkipped.Add(ctx, skipped)
}

// RecordDispatchAllocated records a successful outward allocation.
func (lm *LedgerMetrics) RecordDispatchAllocated(ctx context.Context, warehouseID uuid.UUID, matchMode string) {
	lm.dispatchAllocated.Inc(ctx,
		AttrWarehouseID.String(warehouseID.String()),
		AttrMatchMode.String(matchMode),
	)
}

// RecordDispatchReversed records a reversal of a dispatch allocation.
func (lm *LedgerMetrics) RecordDispatchReversed(ctx context.Context, warehouseID uuid.UUID) {
	lm.dispatchReversed.Inc(ctx,
		AttrWarehouseID.String(warehouseID.String()),
	)
}

// RecordAllocationRefused records an allocation refused for lack of stock.
func (lm *LedgerMetrics) RecordAllocationRefused(ctx context.Context, warehouseID uuid.UUID, matchMode string) {
	lm.allocationRefused.Inc(ctx,
		AttrWarehouseID.String(warehouseID.String()),
		AttrMatchMode.String(matchMode),
	)
}

// RecordCommitmentRejected records a receipt line rejected because its
// quantity would exceed the order line commitment.
func (lm *LedgerMetrics) RecordCommitmentRejected(ctx context.Context, sku string) {
	lm.commitmentRejections.Inc(ctx,
		AttrSKU.String(sku),
	)
}

// RecordLowStockKeys records the current low stock key count for a warehouse.
func (lm *LedgerMetrics) RecordLowStockKeys(ctx context.Context, warehouseID uuid.UUID, count int64) {
	lm.lowStockKeys.Record(ctx, count,
		AttrWarehouseID.String(warehouseID.String()),
	)
}

// RecordOutOfStockKeys records the current out of stock key count for a warehouse.
func (lm *LedgerMetrics) RecordOutOfStockKeys(ctx context.Context, warehouseID uuid.UUID, count int64) {
	lm.outOfStockKeys.Record(ctx, count,
		AttrWarehouseID.String(warehouseID.String()),
	)
}

// StartPeriodicCollection starts periodic collection of stock gauge metrics.
// It is non-blocking. Use Stop() to stop collection.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go lm.runPeriodicCollection(ctx, interval)
	})
}

func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	lm.collectStockMetrics(ctx)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.collectStockMetrics(ctx)
		}
	}
}

func (lm *LedgerMetrics) collectStockMetrics(ctx context.Context) {
	if lm.stockProvider == nil {
		lm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	lowByWarehouse, err := lm.stockProvider.GetLowStockKeyCount(ctx, lm.lowStockThreshold)
	if err != nil {
		lm.logger.Warn("Failed to collect low stock key counts", zap.Error(err))
	} else {
		for warehouseID, count := range lowByWarehouse {
			lm.RecordLowStockKeys(ctx, warehouseID, count)
		}
	}

	outByWarehouse, err := lm.stockProvider.GetOutOfStockKeyCount(ctx)
	if err != nil {
		lm.logger.Warn("Failed to collect out of stock key counts", zap.Error(err))
	} else {
		for warehouseID, count := range outByWarehouse {
			lm.RecordOutOfStockKeys(ctx, warehouseID, count)
		}
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

package telemetry

import (
	"context"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerEventHandler turns ledger domain events into metric increments. It
// subscribes on the event bus next to the services, so the counters move
// without any service holding a metrics reference.
type LedgerEventHandler struct {
	metrics *LedgerMetrics
	logger  *zap.Logger
}

// NewLedgerEventHandler creates a new LedgerEventHandler
func NewLedgerEventHandler(metrics *LedgerMetrics, logger *zap.Logger) *LedgerEventHandler {
	return &LedgerEventHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerEventHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeReceiptRecorded,
		ledger.EventTypeReceiptSkipped,
		ledger.EventTypeStockAllocated,
		ledger.EventTypeAllocationReversed,
		ledger.EventTypeAllocationRefused,
		ledger.EventTypeCommitmentRejected,
	}
}

// Handle processes a domain event
func (h *LedgerEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.ReceiptRecordedEvent:
		h.metrics.RecordReceiptIngested(ctx)
	case *ledger.ReceiptSkippedEvent:
		h.metrics.RecordReceiptLinesSkipped(ctx, int64(e.LineCount))
	case *ledger.StockAllocatedEvent:
		h.metrics.RecordDispatchAllocated(ctx, e.WarehouseID, string(e.MatchMode))
	case *ledger.AllocationReversedEvent:
		h.metrics.RecordDispatchReversed(ctx, e.WarehouseID)
	case *ledger.AllocationRefusedEvent:
		h.metrics.RecordAllocationRefused(ctx, e.WarehouseID, string(e.MatchMode))
	case *ledger.CommitmentRejectedEvent:
		h.metrics.RecordCommitmentRejected(ctx, e.SKU)
	default:
		h.logger.Debug("Unhandled ledger event", zap.String("event_type", event.EventType()))
	}
	return nil
}

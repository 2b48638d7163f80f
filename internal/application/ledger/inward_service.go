package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/partner"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InwardService turns goods arrivals into ledger entries. One receipt line
// becomes exactly one entry; a receipt naming an unknown warehouse is
// skipped whole, never row by row.
type InwardService struct {
	scope          TransactionScope
	warehouseRepo  partner.WarehouseRepository
	commitments    *CommitmentService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInwardService creates a new InwardService
func NewInwardService(
	scope TransactionScope,
	warehouseRepo partner.WarehouseRepository,
	commitments *CommitmentService,
	logger *zap.Logger,
) *InwardService {
	return &InwardService{
		scope:         scope,
		warehouseRepo: warehouseRepo,
		commitments:   commitments,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InwardService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// IngestReceipt records a receipt and appends one ledger entry per line.
// When any line names a warehouse the registry does not know, the whole
// receipt is skipped and nothing is written: the response reports zero
// entries and the full skipped line count, without an error. A receipt
// never lands partially. When the receipt names an order, its lines are
// validated together against that order's open commitment before anything
// is written.
func (s *InwardService) IngestReceipt(ctx context.Context, req IngestReceiptRequest) (*IngestReceiptResponse, error) {
	var resp *IngestReceiptResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		resp, err = s.IngestWithin(ctx, repos, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// IngestWithin runs the ingest inside an already-open transaction. Pickup
// completion uses this to retire the in-transit quantity and inward the
// goods atomically.
func (s *InwardService) IngestWithin(ctx context.Context, repos TransactionalRepositories, req IngestReceiptRequest) (*IngestReceiptResponse, error) {
	if len(req.Lines) == 0 {
		return nil, ledger.NewValidationError("lines", "receipt requires at least one line")
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	receipt, err := ledger.NewInwardReceipt(req.OrderNumber, req.InvoiceNumbers, req.CompanyName, receivedAt)
	if err != nil {
		return nil, err
	}
	receipt.Remark = req.Remark

	unknown, err := s.countUnknownWarehouses(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	if unknown > 0 {
		s.publishSkipped(ctx, receipt, len(req.Lines))
		s.logger.Warn("Skipped receipt naming unknown warehouse",
			zap.String("order_number", receipt.OrderNumber),
			zap.Int("lines", len(req.Lines)),
			zap.Int("unknown", unknown))
		return &IngestReceiptResponse{
			LinesSkipped:  len(req.Lines),
			TotalQuantity: decimal.Zero,
		}, nil
	}

	var order *trade.PurchaseOrder
	if receipt.OrderNumber != "" {
		order, err = repos.OrderRepo().FindByOrderNumber(ctx, receipt.OrderNumber)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ledger.NewNotFoundError("purchase order", receipt.OrderNumber)
		}
		if err != nil {
			return nil, err
		}
	}

	tally := NewProposalTally()
	for _, lineReq := range req.Lines {
		line, err := receipt.AddLine(lineReq.OrderLineID, lineReq.ProductID, lineReq.SKU, lineReq.WarehouseID, lineReq.Quantity, lineReq.Category, lineReq.Color)
		if err != nil {
			return nil, err
		}
		if order != nil {
			if err := s.commitments.validateAgainstOrder(ctx, repos, order, line.OrderLineID, line.ProductID, line.SKU, line.Quantity, tally); err != nil {
				return nil, err
			}
		}
	}

	if err := repos.ReceiptRepo().Save(ctx, receipt); err != nil {
		return nil, err
	}

	entries := make([]*ledger.LedgerEntry, 0, len(receipt.Lines))
	for i := range receipt.Lines {
		line := &receipt.Lines[i]
		entry, err := ledger.NewLedgerEntry(receipt.ID, line.ID, line.ProductID, line.SKU, line.WarehouseID, line.Quantity)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = receipt.ReceivedAt
		entry.UpdatedAt = receipt.ReceivedAt
		entries = append(entries, entry)
	}
	if err := repos.EntryRepo().SaveAll(ctx, entries); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, receipt, entries)

	s.logger.Info("Ingested inward receipt",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("order_number", receipt.OrderNumber),
		zap.Int("entries", len(entries)))

	return &IngestReceiptResponse{
		ReceiptID:      receipt.ID,
		EntriesCreated: len(entries),
		TotalQuantity:  receipt.TotalQuantity(),
	}, nil
}

// countUnknownWarehouses counts lines whose warehouse the registry does not
// know. One unknown warehouse condemns the whole receipt.
func (s *InwardService) countUnknownWarehouses(ctx context.Context, lines []InwardLineRequest) (int, error) {
	unknown := 0
	known := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		exists, checked := known[line.WarehouseID]
		if !checked {
			var err error
			exists, err = s.warehouseRepo.Exists(ctx, line.WarehouseID)
			if err != nil {
				return 0, err
			}
			known[line.WarehouseID] = exists
		}
		if !exists {
			unknown++
		}
	}
	return unknown, nil
}

// GetReceipt returns one receipt with its lines
func (s *InwardService) GetReceipt(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	var receipt *ledger.InwardReceipt
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receipt, err = repos.ReceiptRepo().FindByID(ctx, id)
		return err
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ledger.NewNotFoundError("inward receipt", id.String())
	}
	if err != nil {
		return nil, err
	}
	resp := NewReceiptResponse(receipt)
	return &resp, nil
}

// ListReceipts lists receipts newest first
func (s *InwardService) ListReceipts(ctx context.Context, filter ListFilter) (*shared.Paginated[ReceiptResponse], error) {
	f := filter.ToFilter()
	var receipts []ledger.InwardReceipt
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receipts, err = repos.ReceiptRepo().FindAll(ctx, f)
		if err != nil {
			return err
		}
		total, err = repos.ReceiptRepo().Count(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		items = append(items, NewReceiptResponse(&receipts[i]))
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// DeleteReceipt retires a receipt and its ledger entries. The deletion is
// refused with a conflict carrying the dependent entries when any entry has
// been consumed from: dispatched stock cannot lose its origin.
func (s *InwardService) DeleteReceipt(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ReceiptRepo().FindByID(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ledger.NewNotFoundError("inward receipt", id.String())
			}
			return err
		}

		entries, err := repos.EntryRepo().FindByReceipt(ctx, id)
		if err != nil {
			return err
		}
		if conflict := consumedConflict(id, entries); conflict != nil {
			return conflict
		}

		// The delete only touches untouched entries. An entry consumed
		// between the check above and the delete stays behind, and the
		// count mismatch rolls the transaction back.
		retired, err := repos.EntryRepo().SoftDeleteUntouchedByReceipt(ctx, id)
		if err != nil {
			return err
		}
		if retired != int64(len(entries)) {
			current, err := repos.EntryRepo().FindByReceipt(ctx, id)
			if err != nil {
				return err
			}
			if conflict := consumedConflict(id, current); conflict != nil {
				return conflict
			}
			return shared.ErrConcurrencyConflict
		}
		if err := repos.ReceiptRepo().SoftDelete(ctx, id); err != nil {
			return err
		}

		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, ledger.NewEntriesRetiredEvent(id, len(entries))); err != nil {
				s.logger.Warn("Failed to publish entries retired event", zap.Error(err))
			}
		}
		s.logger.Info("Deleted inward receipt",
			zap.String("receipt_id", id.String()),
			zap.Int("entries_retired", len(entries)))
		return nil
	})
}

// consumedConflict inspects a receipt's entries and reports the ones
// dispatched stock depends on
func consumedConflict(receiptID uuid.UUID, entries []ledger.LedgerEntry) *ledger.ConflictError {
	consumedIDs := make([]uuid.UUID, 0)
	consumedTotal := decimal.Zero
	for i := range entries {
		if !entries[i].IsUntouched() {
			consumedIDs = append(consumedIDs, entries[i].ID)
			consumedTotal = consumedTotal.Add(entries[i].QuantityOutward)
		}
	}
	if len(consumedIDs) == 0 {
		return nil
	}
	return &ledger.ConflictError{
		ReceiptID:       receiptID,
		ConsumedEntries: consumedIDs,
		ConsumedTotal:   consumedTotal,
	}
}

func (s *InwardService) publishSkipped(ctx context.Context, receipt *ledger.InwardReceipt, lineCount int) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, ledger.NewReceiptSkippedEvent(receipt, lineCount)); err != nil {
		s.logger.Warn("Failed to publish receipt skipped event", zap.Error(err))
	}
}

func (s *InwardService) publishEvents(ctx context.Context, receipt *ledger.InwardReceipt, entries []*ledger.LedgerEntry) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, ledger.NewReceiptRecordedEvent(receipt)); err != nil {
		s.logger.Warn("Failed to publish receipt recorded event", zap.Error(err))
	}
	for _, entry := range entries {
		for _, event := range entry.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("Failed to publish entry event", zap.Error(err))
			}
		}
		entry.ClearDomainEvents()
	}
}

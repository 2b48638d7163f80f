package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxVersionRetries bounds how often a mutation is replayed after losing an
// optimistic version race before the conflict is surfaced to the caller.
const maxVersionRetries = 3

// OutwardService allocates ledger stock to outward dispatches and unwinds
// those allocations. A dispatch either gets its full quantity or nothing:
// when supply cannot cover the request the operation fails with the figures
// and no entry is touched.
type OutwardService struct {
	scope          TransactionScope
	locker         Locker
	allocator      ledger.AllocationStrategy
	reverser       ledger.ReversalStrategy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOutwardService creates a new OutwardService with FIFO allocation and
// LIFO reversal
func NewOutwardService(scope TransactionScope, locker Locker, logger *zap.Logger) *OutwardService {
	return &OutwardService{
		scope:     scope,
		locker:    locker,
		allocator: ledger.NewFIFOAllocationStrategy(ledger.MatchModeProduct),
		reverser:  ledger.NewLIFOReversalStrategy(),
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OutwardService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Allocate records a dispatch and consumes ledger stock for it, oldest
// entries first. All writers of the same (warehouse, product) slice run
// under one lock key, and every touched entry is persisted with its version
// stamp checked.
func (s *OutwardService) Allocate(ctx context.Context, req AllocateRequest) (*DispatchResponse, error) {
	dispatchedAt := time.Now()
	if req.DispatchedAt != nil {
		dispatchedAt = *req.DispatchedAt
	}
	dispatch, err := ledger.NewOutwardDispatch(req.WarehouseID, req.ProductID, req.SKU, req.Quantity, req.Reference, dispatchedAt)
	if err != nil {
		return nil, err
	}
	dispatch.Remark = req.Remark
	key := dispatch.Key()

	var result *ledger.AllocationResult
	err = s.locker.WithLock(ctx, key.LockKey(req.WarehouseID), func(ctx context.Context) error {
		return s.withVersionRetry(ctx, func() error {
			return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
				var err error
				result, err = s.allocate(ctx, repos, dispatch)
				return err
			})
		})
	})
	if err != nil {
		s.publishRefused(ctx, dispatch, err)
		return nil, err
	}

	s.publishAllocated(ctx, dispatch, result)
	s.logger.Info("Allocated outward dispatch",
		zap.String("dispatch_id", dispatch.ID.String()),
		zap.String("key", key.String()),
		zap.String("quantity", dispatch.Quantity.String()),
		zap.Int("entries", len(result.Consumptions)))

	resp := NewDispatchResponse(dispatch, result)
	return &resp, nil
}

// allocate runs the selection and mutation for one dispatch inside a
// transaction
func (s *OutwardService) allocate(ctx context.Context, repos TransactionalRepositories, dispatch *ledger.OutwardDispatch) (*ledger.AllocationResult, error) {
	key := dispatch.Key()
	entries, err := repos.EntryRepo().FindWithStock(ctx, dispatch.WarehouseID, key)
	if err != nil {
		return nil, err
	}

	result, err := s.allocator.SelectEntries(dispatch.Quantity, entries)
	if err != nil {
		return nil, err
	}
	// A shortfall within Epsilon is rounding noise from spreadsheet
	// quantities, not missing stock. The allocation proceeds with what the
	// entries hold; anything larger is refused whole.
	if result.RemainingQuantity.GreaterThan(ledger.Epsilon) {
		return nil, ledger.NewInsufficientStockError(key, dispatch.WarehouseID, dispatch.Quantity, ledger.TotalRemaining(entries))
	}
	result.MatchMode = key.Mode()

	ptrs := make([]*ledger.LedgerEntry, len(entries))
	for i := range entries {
		ptrs[i] = &entries[i]
	}
	if err := ledger.ApplyAllocation(ptrs, result); err != nil {
		return nil, err
	}
	for _, c := range result.Consumptions {
		for _, entry := range ptrs {
			if entry.ID == c.EntryID {
				if err := repos.EntryRepo().UpdateWithVersion(ctx, entry); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	if err := repos.DispatchRepo().Save(ctx, dispatch); err != nil {
		return nil, err
	}
	records := ledger.NewAllocationRecords(dispatch.ID, dispatch.WarehouseID, result)
	if err := repos.RecordRepo().SaveAll(ctx, records); err != nil {
		return nil, err
	}
	return result, nil
}

// ReverseDispatch undoes a dispatch completely: every entry it consumed gets
// its quantity back, newest entries first, and the dispatch is marked
// reversed.
func (s *OutwardService) ReverseDispatch(ctx context.Context, dispatchID uuid.UUID) error {
	return s.withDispatchLock(ctx, dispatchID, func(ctx context.Context, repos TransactionalRepositories, dispatch *ledger.OutwardDispatch) error {
		result, err := s.reverse(ctx, repos, dispatch)
		if err != nil {
			return err
		}
		if err := dispatch.MarkReversed(); err != nil {
			return err
		}
		if err := repos.DispatchRepo().Save(ctx, dispatch); err != nil {
			return err
		}
		s.publishReversed(ctx, dispatch, result)
		s.logger.Info("Reversed outward dispatch",
			zap.String("dispatch_id", dispatch.ID.String()),
			zap.String("restored", result.TotalRestored.String()))
		return nil
	})
}

// EditDispatch changes a dispatch's quantity. The original allocation is
// fully reversed and a fresh one computed for the new quantity in the same
// transaction, so repeating the edit lands in the same state and a failed
// re-allocation leaves the original untouched.
func (s *OutwardService) EditDispatch(ctx context.Context, dispatchID uuid.UUID, req EditDispatchRequest) (*DispatchResponse, error) {
	var dispatch *ledger.OutwardDispatch
	var result *ledger.AllocationResult
	err := s.withDispatchLock(ctx, dispatchID, func(ctx context.Context, repos TransactionalRepositories, d *ledger.OutwardDispatch) error {
		dispatch = d
		if _, err := s.reverse(ctx, repos, dispatch); err != nil {
			return err
		}
		if err := dispatch.Reactivate(req.Quantity); err != nil {
			return err
		}
		if req.Remark != "" {
			dispatch.Remark = req.Remark
		}
		var err error
		result, err = s.allocate(ctx, repos, dispatch)
		return err
	})
	if err != nil {
		if dispatch != nil {
			s.publishRefused(ctx, dispatch, err)
		}
		return nil, err
	}

	s.publishAllocated(ctx, dispatch, result)
	s.logger.Info("Edited outward dispatch",
		zap.String("dispatch_id", dispatch.ID.String()),
		zap.String("quantity", dispatch.Quantity.String()))

	resp := NewDispatchResponse(dispatch, result)
	return &resp, nil
}

// DeleteDispatch reverses a dispatch and retires it
func (s *OutwardService) DeleteDispatch(ctx context.Context, dispatchID uuid.UUID) error {
	return s.withDispatchLock(ctx, dispatchID, func(ctx context.Context, repos TransactionalRepositories, dispatch *ledger.OutwardDispatch) error {
		if dispatch.Status == ledger.DispatchStatusActive {
			result, err := s.reverse(ctx, repos, dispatch)
			if err != nil {
				return err
			}
			if err := dispatch.MarkReversed(); err != nil {
				return err
			}
			if err := repos.DispatchRepo().Save(ctx, dispatch); err != nil {
				return err
			}
			s.publishReversed(ctx, dispatch, result)
		}
		return repos.DispatchRepo().SoftDelete(ctx, dispatchID)
	})
}

// GetDispatch returns one dispatch with its audit trail
func (s *OutwardService) GetDispatch(ctx context.Context, dispatchID uuid.UUID) (*DispatchResponse, error) {
	var resp DispatchResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		dispatch, err := repos.DispatchRepo().FindByID(ctx, dispatchID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("dispatch", dispatchID.String())
		}
		if err != nil {
			return err
		}
		records, err := repos.RecordRepo().FindByDispatch(ctx, dispatchID)
		if err != nil {
			return err
		}
		resp = NewDispatchResponse(dispatch, nil)
		for _, rec := range records {
			if rec.Reversal {
				continue
			}
			resp.Consumptions = append(resp.Consumptions, ConsumptionResponse{
				EntryID:   rec.EntryID,
				ReceiptID: rec.ReceiptID,
				Consumed:  rec.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDispatches lists dispatches newest first
func (s *OutwardService) ListDispatches(ctx context.Context, filter ListFilter) (*shared.Paginated[DispatchResponse], error) {
	f := filter.ToFilter()
	var items []DispatchResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		dispatches, err := repos.DispatchRepo().FindAll(ctx, f)
		if err != nil {
			return err
		}
		total, err = repos.DispatchRepo().Count(ctx, f)
		if err != nil {
			return err
		}
		items = make([]DispatchResponse, 0, len(dispatches))
		for i := range dispatches {
			items = append(items, NewDispatchResponse(&dispatches[i], nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// reverse restores the net quantity this dispatch consumed from each entry,
// newest entries first. The per-entry ceiling comes from the dispatch's own
// audit trail, so stock consumed by other dispatches is never given back.
func (s *OutwardService) reverse(ctx context.Context, repos TransactionalRepositories, dispatch *ledger.OutwardDispatch) (*ledger.ReversalResult, error) {
	records, err := repos.RecordRepo().FindByDispatch(ctx, dispatch.ID)
	if err != nil {
		return nil, err
	}

	owed := make(map[uuid.UUID]decimal.Decimal)
	for _, rec := range records {
		if rec.Reversal {
			owed[rec.EntryID] = owed[rec.EntryID].Sub(rec.Quantity)
		} else {
			owed[rec.EntryID] = owed[rec.EntryID].Add(rec.Quantity)
		}
	}

	entries := make([]*ledger.LedgerEntry, 0, len(owed))
	scoped := make([]ledger.LedgerEntry, 0, len(owed))
	total := decimal.Zero
	for entryID, quantity := range owed {
		if quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		entry, err := repos.EntryRepo().FindByID(ctx, entryID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ledger.NewNotFoundError("ledger entry", entryID.String())
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)

		// Scope the selection to what this dispatch still owes the entry.
		capped := *entry
		capped.QuantityOutward = quantity
		scoped = append(scoped, capped)
		total = total.Add(quantity)
	}
	if total.IsZero() {
		return &ledger.ReversalResult{TotalRestored: decimal.Zero, Shortfall: decimal.Zero}, nil
	}

	result, err := s.reverser.SelectRestorations(total, scoped)
	if err != nil {
		return nil, err
	}
	if err := ledger.ApplyReversal(entries, result); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if err := repos.EntryRepo().UpdateWithVersion(ctx, entry); err != nil {
			return nil, err
		}
	}
	reversalRecords := ledger.NewReversalRecords(dispatch.ID, dispatch.WarehouseID, entries, result)
	if err := repos.RecordRepo().SaveAll(ctx, reversalRecords); err != nil {
		return nil, err
	}
	return result, nil
}

// withDispatchLock loads the dispatch, takes its ledger key lock, and runs
// fn in a transaction with version retry
func (s *OutwardService) withDispatchLock(ctx context.Context, dispatchID uuid.UUID, fn func(ctx context.Context, repos TransactionalRepositories, dispatch *ledger.OutwardDispatch) error) error {
	var lockKey string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		dispatch, err := repos.DispatchRepo().FindByID(ctx, dispatchID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("dispatch", dispatchID.String())
		}
		if err != nil {
			return err
		}
		lockKey = dispatch.Key().LockKey(dispatch.WarehouseID)
		return nil
	})
	if err != nil {
		return err
	}

	return s.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		return s.withVersionRetry(ctx, func() error {
			return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
				dispatch, err := repos.DispatchRepo().FindByID(ctx, dispatchID)
				if errors.Is(err, shared.ErrNotFound) {
					return ledger.NewNotFoundError("dispatch", dispatchID.String())
				}
				if err != nil {
					return err
				}
				return fn(ctx, repos, dispatch)
			})
		})
	})
}

// withVersionRetry replays fn when it loses an optimistic version race
func (s *OutwardService) withVersionRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxVersionRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Warn("Retrying after version conflict", zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

func (s *OutwardService) publishAllocated(ctx context.Context, dispatch *ledger.OutwardDispatch, result *ledger.AllocationResult) {
	if s.eventPublisher == nil {
		return
	}
	event := ledger.NewStockAllocatedEvent(dispatch.ID, dispatch.WarehouseID, dispatch.Key(), result)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish stock allocated event", zap.Error(err))
	}
}

func (s *OutwardService) publishReversed(ctx context.Context, dispatch *ledger.OutwardDispatch, result *ledger.ReversalResult) {
	if s.eventPublisher == nil {
		return
	}
	event := ledger.NewAllocationReversedEvent(dispatch.ID, dispatch.WarehouseID, result)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish allocation reversed event", zap.Error(err))
	}
}

func (s *OutwardService) publishRefused(ctx context.Context, dispatch *ledger.OutwardDispatch, err error) {
	var insufficient *ledger.InsufficientStockError
	if s.eventPublisher == nil || !errors.As(err, &insufficient) {
		return
	}
	event := ledger.NewAllocationRefusedEvent(dispatch.ID, dispatch.Key(), insufficient)
	if pubErr := s.eventPublisher.Publish(ctx, event); pubErr != nil {
		s.logger.Warn("Failed to publish allocation refused event", zap.Error(pubErr))
	}
}

package ledger

import (
	"context"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the ledger repositories.
// A function executed within a scope sees all repository operations in one
// database transaction, committed or rolled back as a unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a ledger
// mutation can touch, bound to the same transaction.
type TransactionalRepositories interface {
	// EntryRepo returns the ledger entry repository scoped to the transaction
	EntryRepo() ledger.EntryRepository
	// ReceiptRepo returns the inward receipt repository scoped to the transaction
	ReceiptRepo() ledger.InwardReceiptRepository
	// DispatchRepo returns the dispatch repository scoped to the transaction
	DispatchRepo() ledger.DispatchRepository
	// RecordRepo returns the allocation record repository scoped to the transaction
	RecordRepo() ledger.AllocationRecordRepository
	// OrderRepo returns the purchase order repository scoped to the transaction
	OrderRepo() trade.PurchaseOrderRepository
	// PickupRepo returns the pickup repository scoped to the transaction
	PickupRepo() trade.PickupRepository
}

// NoOpTransactionScope runs the function against the injected repositories
// without an enclosing transaction. Used in tests.
type NoOpTransactionScope struct {
	entryRepo    ledger.EntryRepository
	receiptRepo  ledger.InwardReceiptRepository
	dispatchRepo ledger.DispatchRepository
	recordRepo   ledger.AllocationRecordRepository
	orderRepo    trade.PurchaseOrderRepository
	pickupRepo   trade.PickupRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	entryRepo ledger.EntryRepository,
	receiptRepo ledger.InwardReceiptRepository,
	dispatchRepo ledger.DispatchRepository,
	recordRepo ledger.AllocationRecordRepository,
	orderRepo trade.PurchaseOrderRepository,
	pickupRepo trade.PickupRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		entryRepo:    entryRepo,
		receiptRepo:  receiptRepo,
		dispatchRepo: dispatchRepo,
		recordRepo:   recordRepo,
		orderRepo:    orderRepo,
		pickupRepo:   pickupRepo,
	}
}

// Execute runs the function directly, with no transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EntryRepo returns the ledger entry repository
func (s *NoOpTransactionScope) EntryRepo() ledger.EntryRepository { return s.entryRepo }

// ReceiptRepo returns the inward receipt repository
func (s *NoOpTransactionScope) ReceiptRepo() ledger.InwardReceiptRepository { return s.receiptRepo }

// DispatchRepo returns the dispatch repository
func (s *NoOpTransactionScope) DispatchRepo() ledger.DispatchRepository { return s.dispatchRepo }

// RecordRepo returns the allocation record repository
func (s *NoOpTransactionScope) RecordRepo() ledger.AllocationRecordRepository { return s.recordRepo }

// OrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) OrderRepo() trade.PurchaseOrderRepository { return s.orderRepo }

// PickupRepo returns the pickup repository
func (s *NoOpTransactionScope) PickupRepo() trade.PickupRepository { return s.pickupRepo }

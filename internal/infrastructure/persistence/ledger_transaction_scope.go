package persistence

import (
	"context"

	appledger "github.com/exportops/backend/internal/application/ledger"
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Repository operations executed within a scope commit or roll back as a unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories binds every repository to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// EntryRepo returns the ledger entry repository scoped to the transaction
func (r *gormTransactionalRepositories) EntryRepo() ledger.EntryRepository {
	return NewGormEntryRepository(r.tx)
}

// ReceiptRepo returns the inward receipt repository scoped to the transaction
func (r *gormTransactionalRepositories) ReceiptRepo() ledger.InwardReceiptRepository {
	return NewGormInwardReceiptRepository(r.tx)
}

// DispatchRepo returns the dispatch repository scoped to the transaction
func (r *gormTransactionalRepositories) DispatchRepo() ledger.DispatchRepository {
	return NewGormDispatchRepository(r.tx)
}

// RecordRepo returns the allocation record repository scoped to the transaction
func (r *gormTransactionalRepositories) RecordRepo() ledger.AllocationRecordRepository {
	return NewGormAllocationRecordRepository(r.tx)
}

// OrderRepo returns the purchase order repository scoped to the transaction
func (r *gormTransactionalRepositories) OrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// PickupRepo returns the pickup repository scoped to the transaction
func (r *gormTransactionalRepositories) PickupRepo() trade.PickupRepository {
	return NewGormPickupRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

package ledger

import (
	"context"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryRepository is the single persistence contract for ledger entries.
// Every reader and writer of stock state goes through this interface; there
// is no second store to drift out of sync with.
type EntryRepository interface {
	// FindByID finds a ledger entry by its ID. Returns shared.ErrNotFound
	// when no live entry matches; single-record lookups on every repository
	// follow this convention.
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByReceipt finds all entries created from one receipt
	FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]LedgerEntry, error)

	// FindByReceiptLine finds the entry created from one receipt line
	FindByReceiptLine(ctx context.Context, receiptLineID uuid.UUID) (*LedgerEntry, error)

	// FindMatching finds entries in a warehouse matching a product key,
	// ordered by creation time ascending
	FindMatching(ctx context.Context, warehouseID uuid.UUID, key ProductKey) ([]LedgerEntry, error)

	// FindWithStock finds entries in a warehouse matching a product key that
	// still have remaining stock, ordered by creation time ascending
	FindWithStock(ctx context.Context, warehouseID uuid.UUID, key ProductKey) ([]LedgerEntry, error)

	// FindByWarehouse finds all live entries in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)

	// FindAll finds all live entries
	FindAll(ctx context.Context, filter shared.Filter) ([]LedgerEntry, error)

	// FindReceivedBefore finds live entries created before the cutoff
	FindReceivedBefore(ctx context.Context, cutoff time.Time, filter shared.Filter) ([]LedgerEntry, error)

	// Save creates a ledger entry
	Save(ctx context.Context, entry *LedgerEntry) error

	// SaveAll creates multiple ledger entries
	SaveAll(ctx context.Context, entries []*LedgerEntry) error

	// UpdateWithVersion persists a mutated entry, guarded by its version
	// stamp. Returns shared.ErrConcurrencyConflict when the stored version
	// has moved on.
	UpdateWithVersion(ctx context.Context, entry *LedgerEntry) error

	// SoftDeleteUntouchedByReceipt retires the entries of a receipt that no
	// dispatch has consumed from, and reports how many it retired
	SoftDeleteUntouchedByReceipt(ctx context.Context, receiptID uuid.UUID) (int64, error)

	// Count counts live entries
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// InwardReceiptRepository defines persistence for inward receipts
type InwardReceiptRepository interface {
	// FindByID finds a receipt with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*InwardReceipt, error)

	// FindByIDs finds multiple receipts with their lines
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]InwardReceipt, error)

	// FindByOrderNumber finds receipts recorded against an order
	FindByOrderNumber(ctx context.Context, orderNumber string) ([]InwardReceipt, error)

	// FindAll lists receipts newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]InwardReceipt, error)

	// Save creates or updates a receipt with its lines
	Save(ctx context.Context, receipt *InwardReceipt) error

	// SoftDelete retires a receipt and its lines
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Count counts live receipts
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// DispatchRepository defines persistence for outward dispatches
type DispatchRepository interface {
	// FindByID finds a dispatch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*OutwardDispatch, error)

	// FindByWarehouse lists dispatches from a warehouse, newest first
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]OutwardDispatch, error)

	// FindAll lists dispatches newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]OutwardDispatch, error)

	// Save creates or updates a dispatch
	Save(ctx context.Context, dispatch *OutwardDispatch) error

	// SoftDelete retires a dispatch
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Count counts live dispatches
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// AllocationRecordRepository defines persistence for the dispatch audit trail
type AllocationRecordRepository interface {
	// FindByDispatch finds all audit rows of a dispatch, oldest first
	FindByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]AllocationRecord, error)

	// FindByEntry finds all audit rows touching a ledger entry
	FindByEntry(ctx context.Context, entryID uuid.UUID) ([]AllocationRecord, error)

	// SaveAll appends audit rows
	SaveAll(ctx context.Context, records []AllocationRecord) error
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEntryRepository implements ledger.EntryRepository using GORM
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// FindByID finds a ledger entry by its ID
func (r *GormEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByReceipt finds all entries created from one receipt
func (r *GormEntryRepository) FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByReceiptLine finds the entry created from one receipt line
func (r *GormEntryRepository) FindByReceiptLine(ctx context.Context, receiptLineID uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		First(&entry, "receipt_line_id = ?", receiptLineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindMatching finds entries in a warehouse matching a product key,
// ordered oldest first
func (r *GormEntryRepository) FindMatching(ctx context.Context, warehouseID uuid.UUID, key ledger.ProductKey) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.matchQuery(ctx, warehouseID, key)
	if err := query.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindWithStock finds matching entries that still have remaining stock,
// ordered oldest first
func (r *GormEntryRepository) FindWithStock(ctx context.Context, warehouseID uuid.UUID, key ledger.ProductKey) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.matchQuery(ctx, warehouseID, key).
		Where("remaining_stock > 0")
	if err := query.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// matchQuery builds the product key predicate. Product references compare
// exactly; the SKU fallback matches entries whose SKU is a case-insensitive
// prefix of the requested SKU.
func (r *GormEntryRepository) matchQuery(ctx context.Context, warehouseID uuid.UUID, key ledger.ProductKey) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("warehouse_id = ?", warehouseID)

	if key.ProductID != nil {
		return query.Where("product_id = ?", *key.ProductID)
	}
	return query.Where("sku <> '' AND LOWER(?) LIKE LOWER(sku) || '%'", key.SKU)
}

// FindByWarehouse finds all live entries in a warehouse
func (r *GormEntryRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("warehouse_id = ?", warehouseID)
	query = applySort(query, filter, LedgerEntrySortFields, "created_at")
	query = applyPagination(query, filter)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll finds all live entries
func (r *GormEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.applyFilters(r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}), filter)
	query = applySort(query, filter, LedgerEntrySortFields, "created_at")
	query = applyPagination(query, filter)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindReceivedBefore finds live entries created before the cutoff
func (r *GormEntryRepository) FindReceivedBefore(ctx context.Context, cutoff time.Time, filter shared.Filter) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("created_at < ?", cutoff)
	query = applySort(query, filter, LedgerEntrySortFields, "created_at")
	query = applyPagination(query, filter)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save creates a ledger entry
func (r *GormEntryRepository) Save(ctx context.Context, entry *ledger.LedgerEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// SaveAll creates multiple ledger entries
func (r *GormEntryRepository) SaveAll(ctx context.Context, entries []*ledger.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// UpdateWithVersion persists a mutated entry guarded by its version stamp.
// The stored row is updated only when its version still matches the one the
// entry was loaded with; the repository owns the increment.
func (r *GormEntryRepository) UpdateWithVersion(ctx context.Context, entry *ledger.LedgerEntry) error {
	result := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version).
		Updates(map[string]interface{}{
			"quantity_outward": entry.QuantityOutward,
			"remaining_stock":  entry.RemainingStock,
			"version":          entry.Version + 1,
			"updated_at":       time.Now().UTC(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	entry.IncrementVersion()
	return nil
}

// SoftDeleteUntouchedByReceipt retires the entries of a receipt that no
// dispatch has consumed from, and reports how many it retired. An entry
// consumed concurrently stays in place so the caller can detect the mismatch.
func (r *GormEntryRepository) SoftDeleteUntouchedByReceipt(ctx context.Context, receiptID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("receipt_id = ? AND quantity_outward = 0", receiptID).
		Delete(&ledger.LedgerEntry{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Count counts live entries
func (r *GormEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilters applies the filter map predicates to the query
func (r *GormEntryRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "sku":
			query = query.Where("LOWER(sku) = LOWER(?)", value)
		case "has_stock":
			if value == true {
				query = query.Where("remaining_stock > 0")
			}
		case "exhausted":
			if value == true {
				query = query.Where("remaining_stock <= 0")
			}
		}
	}
	if filter.Search != "" {
		query = query.Where("LOWER(sku) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormEntryRepository implements EntryRepository
var _ ledger.EntryRepository = (*GormEntryRepository)(nil)

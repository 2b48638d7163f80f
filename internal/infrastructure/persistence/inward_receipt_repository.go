package persistence

import (
	"context"
	"errors"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInwardReceiptRepository implements ledger.InwardReceiptRepository using GORM
type GormInwardReceiptRepository struct {
	db *gorm.DB
}

// NewGormInwardReceiptRepository creates a new GormInwardReceiptRepository
func NewGormInwardReceiptRepository(db *gorm.DB) *GormInwardReceiptRepository {
	return &GormInwardReceiptRepository{db: db}
}

// FindByID finds a receipt with its lines
func (r *GormInwardReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.InwardReceipt, error) {
	var receipt ledger.InwardReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByIDs finds multiple receipts with their lines
func (r *GormInwardReceiptRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.InwardReceipt, error) {
	if len(ids) == 0 {
		return []ledger.InwardReceipt{}, nil
	}
	var receipts []ledger.InwardReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id IN ?", ids).
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindByOrderNumber finds receipts recorded against an order
func (r *GormInwardReceiptRepository) FindByOrderNumber(ctx context.Context, orderNumber string) ([]ledger.InwardReceipt, error) {
	var receipts []ledger.InwardReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_number = ?", orderNumber).
		Order("received_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindAll lists receipts newest first
func (r *GormInwardReceiptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.InwardReceipt, error) {
	var receipts []ledger.InwardReceipt
	query := r.applyFilters(r.db.WithContext(ctx).Model(&ledger.InwardReceipt{}), filter)
	query = applySort(query, filter, ReceiptSortFields, "received_at")
	query = applyPagination(query, filter)

	if err := query.Preload("Lines").Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Save creates or updates a receipt with its lines
func (r *GormInwardReceiptRepository) Save(ctx context.Context, receipt *ledger.InwardReceipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

// SoftDelete retires a receipt and its lines
func (r *GormInwardReceiptRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&ledger.InwardReceipt{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("receipt_id = ?", id).Delete(&ledger.InwardReceiptLine{}).Error
	})
}

// Count counts live receipts
func (r *GormInwardReceiptRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&ledger.InwardReceipt{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInwardReceiptRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "order_number":
			query = query.Where("order_number = ?", value)
		case "company_name":
			query = query.Where("company_name = ?", value)
		case "received_after":
			query = query.Where("received_at >= ?", value)
		case "received_before":
			query = query.Where("received_at < ?", value)
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(order_number) LIKE LOWER(?) OR LOWER(company_name) LIKE LOWER(?)", pattern, pattern)
	}
	return query
}

// Ensure GormInwardReceiptRepository implements InwardReceiptRepository
var _ ledger.InwardReceiptRepository = (*GormInwardReceiptRepository)(nil)

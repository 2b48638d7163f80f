package persistence

import (
	"context"
	"errors"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDispatchRepository implements ledger.DispatchRepository using GORM
type GormDispatchRepository struct {
	db *gorm.DB
}

// NewGormDispatchRepository creates a new GormDispatchRepository
func NewGormDispatchRepository(db *gorm.DB) *GormDispatchRepository {
	return &GormDispatchRepository{db: db}
}

// FindByID finds a dispatch by its ID
func (r *GormDispatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.OutwardDispatch, error) {
	var dispatch ledger.OutwardDispatch
	if err := r.db.WithContext(ctx).First(&dispatch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dispatch, nil
}

// FindByWarehouse lists dispatches from a warehouse, newest first
func (r *GormDispatchRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]ledger.OutwardDispatch, error) {
	var dispatches []ledger.OutwardDispatch
	query := r.db.WithContext(ctx).
		Model(&ledger.OutwardDispatch{}).
		Where("warehouse_id = ?", warehouseID)
	query = applySort(query, filter, DispatchSortFields, "dispatched_at")
	query = applyPagination(query, filter)

	if err := query.Find(&dispatches).Error; err != nil {
		return nil, err
	}
	return dispatches, nil
}

// FindAll lists dispatches newest first
func (r *GormDispatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.OutwardDispatch, error) {
	var dispatches []ledger.OutwardDispatch
	query := r.applyFilters(r.db.WithContext(ctx).Model(&ledger.OutwardDispatch{}), filter)
	query = applySort(query, filter, DispatchSortFields, "dispatched_at")
	query = applyPagination(query, filter)

	if err := query.Find(&dispatches).Error; err != nil {
		return nil, err
	}
	return dispatches, nil
}

// Save creates or updates a dispatch
func (r *GormDispatchRepository) Save(ctx context.Context, dispatch *ledger.OutwardDispatch) error {
	return r.db.WithContext(ctx).Save(dispatch).Error
}

// SoftDelete retires a dispatch
func (r *GormDispatchRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ledger.OutwardDispatch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts live dispatches
func (r *GormDispatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&ledger.OutwardDispatch{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormDispatchRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(sku) LIKE LOWER(?) OR LOWER(reference) LIKE LOWER(?)", pattern, pattern)
	}
	return query
}

// Ensure GormDispatchRepository implements DispatchRepository
var _ ledger.DispatchRepository = (*GormDispatchRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/exportops/backend/internal/domain/partner"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements partner.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	var warehouse partner.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &warehouse, nil
}

// FindByCode finds a warehouse by its unique code
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*partner.Warehouse, error) {
	var warehouse partner.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &warehouse, nil
}

// FindByIDs finds multiple warehouses by their IDs
func (r *GormWarehouseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Warehouse, error) {
	if len(ids) == 0 {
		return []partner.Warehouse{}, nil
	}
	var warehouses []partner.Warehouse
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// FindAll lists warehouses
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Warehouse, error) {
	var warehouses []partner.Warehouse
	query := r.db.WithContext(ctx).Model(&partner.Warehouse{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(code) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", pattern, pattern)
	}
	query = applySort(query, filter, CommonSortFields, "created_at")
	query = applyPagination(query, filter)

	if err := query.Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// Exists reports whether a warehouse with the given ID is known and active.
// The inward ingestor consults this, so deactivated warehouses stop
// accepting new stock without losing what they already hold.
func (r *GormWarehouseRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&partner.Warehouse{}).
		Where("id = ? AND status = ?", id, partner.WarehouseStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *partner.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}

// Count counts live warehouses
func (r *GormWarehouseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&partner.Warehouse{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormWarehouseRepository implements WarehouseRepository
var _ partner.WarehouseRepository = (*GormWarehouseRepository)(nil)

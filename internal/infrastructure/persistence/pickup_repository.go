package persistence

import (
	"context"
	"errors"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPickupRepository implements trade.PickupRepository using GORM
type GormPickupRepository struct {
	db *gorm.DB
}

// NewGormPickupRepository creates a new GormPickupRepository
func NewGormPickupRepository(db *gorm.DB) *GormPickupRepository {
	return &GormPickupRepository{db: db}
}

// FindByID finds a pickup with its lines
func (r *GormPickupRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Pickup, error) {
	var pickup trade.Pickup
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&pickup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pickup, nil
}

// FindByOrder finds all pickups recorded against an order
func (r *GormPickupRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.Pickup, error) {
	var pickups []trade.Pickup
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("picked_up_at ASC").
		Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// FindInTransit finds all pickups still in transit
func (r *GormPickupRepository) FindInTransit(ctx context.Context, filter shared.Filter) ([]trade.Pickup, error) {
	var pickups []trade.Pickup
	query := r.db.WithContext(ctx).
		Model(&trade.Pickup{}).
		Where("status = ?", trade.PickupStatusInTransit)
	query = applySort(query, filter, PickupSortFields, "picked_up_at")
	query = applyPagination(query, filter)

	if err := query.Preload("Lines").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// FindInTransitByOrder finds in-transit pickups against an order
func (r *GormPickupRepository) FindInTransitByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.Pickup, error) {
	var pickups []trade.Pickup
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ? AND status = ?", orderID, trade.PickupStatusInTransit).
		Order("picked_up_at ASC").
		Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// Save creates or updates a pickup with its lines
func (r *GormPickupRepository) Save(ctx context.Context, pickup *trade.Pickup) error {
	return r.db.WithContext(ctx).Save(pickup).Error
}

// SoftDelete retires a pickup and its lines
func (r *GormPickupRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&trade.Pickup{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("pickup_id = ?", id).Delete(&trade.PickupLine{}).Error
	})
}

// Count counts live pickups
func (r *GormPickupRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&trade.Pickup{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPickupRepository implements PickupRepository
var _ trade.PickupRepository = (*GormPickupRepository)(nil)

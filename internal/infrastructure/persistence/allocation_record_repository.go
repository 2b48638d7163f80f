package persistence

import (
	"context"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRecordRepository implements ledger.AllocationRecordRepository using GORM
type GormAllocationRecordRepository struct {
	db *gorm.DB
}

// NewGormAllocationRecordRepository creates a new GormAllocationRecordRepository
func NewGormAllocationRecordRepository(db *gorm.DB) *GormAllocationRecordRepository {
	return &GormAllocationRecordRepository{db: db}
}

// FindByDispatch finds all audit rows of a dispatch, oldest first
func (r *GormAllocationRecordRepository) FindByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]ledger.AllocationRecord, error) {
	var records []ledger.AllocationRecord
	if err := r.db.WithContext(ctx).
		Where("dispatch_id = ?", dispatchID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByEntry finds all audit rows touching a ledger entry
func (r *GormAllocationRecordRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]ledger.AllocationRecord, error) {
	var records []ledger.AllocationRecord
	if err := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SaveAll appends audit rows
func (r *GormAllocationRecordRepository) SaveAll(ctx context.Context, records []ledger.AllocationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

// Ensure GormAllocationRecordRepository implements AllocationRecordRepository
var _ ledger.AllocationRecordRepository = (*GormAllocationRecordRepository)(nil)

package ledger

import (
	"context"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService answers how much of a product can still be allocated
// from a warehouse. Availability is always derived from the live ledger
// entries, never from a cached counter.
type AvailabilityService struct {
	entryRepo ledger.EntryRepository
	logger    *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(entryRepo ledger.EntryRepository, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{entryRepo: entryRepo, logger: logger}
}

// Available sums the remaining stock of all entries matching the key
func (s *AvailabilityService) Available(ctx context.Context, warehouseID uuid.UUID, productID *uuid.UUID, sku string) (*AvailabilityResponse, error) {
	if warehouseID == uuid.Nil {
		return nil, ledger.NewValidationError("warehouse_id", "warehouse is required")
	}
	key := ledger.NewProductKey(productID, sku)
	if key.IsZero() {
		return nil, ledger.NewValidationError("product", "product or SKU is required")
	}

	entries, err := s.entryRepo.FindWithStock(ctx, warehouseID, key)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResponse{
		WarehouseID: warehouseID,
		ProductID:   productID,
		SKU:         sku,
		MatchMode:   key.Mode(),
		Available:   ledger.TotalRemaining(entries),
		EntryCount:  len(entries),
	}, nil
}

// AvailableEntries returns the matching entries themselves, oldest first,
// for callers that need the batch breakdown
func (s *AvailabilityService) AvailableEntries(ctx context.Context, warehouseID uuid.UUID, productID *uuid.UUID, sku string) ([]ledger.LedgerEntry, error) {
	key := ledger.NewProductKey(productID, sku)
	if warehouseID == uuid.Nil || key.IsZero() {
		return nil, ledger.NewValidationError("request", "warehouse and product are required")
	}
	return s.entryRepo.FindWithStock(ctx, warehouseID, key)
}

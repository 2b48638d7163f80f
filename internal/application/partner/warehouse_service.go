// Package partner provides application services for warehouses and trading partners.
package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/exportops/backend/internal/domain/partner"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarehouseService manages the warehouse registry. Ingest consults this
// registry: receipt lines naming an unknown warehouse are skipped.
type WarehouseService struct {
	warehouseRepo partner.WarehouseRepository
	logger        *zap.Logger
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(warehouseRepo partner.WarehouseRepository, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		logger:        logger,
	}
}

// CreateWarehouseRequest registers a warehouse
type CreateWarehouseRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// UpdateWarehouseRequest updates mutable warehouse fields
type UpdateWarehouseRequest struct {
	Name        *string `json:"name,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// Create registers a new warehouse. Codes are unique across the registry.
func (s *WarehouseService) Create(ctx context.Context, req CreateWarehouseRequest) (*partner.Warehouse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	existing, err := s.warehouseRepo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_WAREHOUSE_CODE", "A warehouse with this code already exists")
	}

	warehouse, err := partner.NewWarehouse(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	warehouse.ContactName = req.ContactName
	warehouse.Phone = req.Phone
	warehouse.Address = req.Address

	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}

	s.logger.Info("Warehouse created",
		zap.String("warehouse_id", warehouse.ID.String()),
		zap.String("code", warehouse.Code),
	)
	return warehouse, nil
}

// GetByID returns a warehouse by its ID
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	return s.warehouseRepo.FindByID(ctx, id)
}

// GetByCode returns a warehouse by its code
func (s *WarehouseService) GetByCode(ctx context.Context, code string) (*partner.Warehouse, error) {
	return s.warehouseRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// List returns a page of warehouses with the total count
func (s *WarehouseService) List(ctx context.Context, filter shared.Filter) ([]partner.Warehouse, int64, error) {
	warehouses, err := s.warehouseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.warehouseRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

// Update applies partial changes to a warehouse
func (s *WarehouseService) Update(ctx context.Context, id uuid.UUID, req UpdateWarehouseRequest) (*partner.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewDomainError("INVALID_WAREHOUSE_NAME", "Warehouse name cannot be empty")
		}
		warehouse.Name = name
	}
	if req.ContactName != nil {
		warehouse.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		warehouse.Phone = *req.Phone
	}
	if req.Address != nil {
		warehouse.Address = *req.Address
	}
	warehouse.IncrementVersion()

	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// Activate puts a warehouse back in service
func (s *WarehouseService) Activate(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	warehouse.Activate()
	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// Deactivate takes a warehouse out of service. Existing ledger entries in the
// warehouse stay live; only new inward lines are refused.
func (s *WarehouseService) Deactivate(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	warehouse.Deactivate()
	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	s.logger.Info("Warehouse deactivated", zap.String("warehouse_id", id.String()))
	return warehouse, nil
}

package partner

import (
	"context"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseRepository defines persistence for warehouses
type WarehouseRepository interface {
	// FindByID finds a warehouse by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)

	// FindByCode finds a warehouse by its unique code
	FindByCode(ctx context.Context, code string) (*Warehouse, error)

	// FindByIDs finds multiple warehouses by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Warehouse, error)

	// FindAll lists warehouses
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)

	// Exists reports whether a warehouse with the given ID is known and
	// accepts stock
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, warehouse *Warehouse) error

	// Count counts live warehouses
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

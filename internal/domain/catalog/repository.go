package catalog

import (
	"context"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence for products
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its unique SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll lists products
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Count counts live products
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

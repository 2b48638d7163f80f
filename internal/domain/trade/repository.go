package trade

import (
	"context"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber finds an order by its unique number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindAll lists orders newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByStatus lists orders in a given status
	FindByStatus(ctx context.Context, status PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// SoftDelete retires an order and its items
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Count counts live orders
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PickupRepository defines persistence for pickups
type PickupRepository interface {
	// FindByID finds a pickup with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Pickup, error)

	// FindByOrder finds all pickups recorded against an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Pickup, error)

	// FindInTransit finds all pickups still in transit
	FindInTransit(ctx context.Context, filter shared.Filter) ([]Pickup, error)

	// FindInTransitByOrder finds in-transit pickups against an order
	FindInTransitByOrder(ctx context.Context, orderID uuid.UUID) ([]Pickup, error)

	// Save creates or updates a pickup with its lines
	Save(ctx context.Context, pickup *Pickup) error

	// SoftDelete retires a pickup and its lines
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Count counts live pickups
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

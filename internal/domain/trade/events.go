package trade

import (
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypePickup        = "Pickup"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePickupRecorded             = "PickupRecorded"
	EventTypePickupStatusChanged        = "PickupStatusChanged"
)

// PurchaseOrderCreatedEvent is raised when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, order.ID, AggregateTypePurchaseOrder),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCreatedEvent) EventType() string {
	return EventTypePurchaseOrderCreated
}

// PurchaseOrderStatusChangedEvent is raised on order status transitions
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	FromStatus  PurchaseOrderStatus `json:"from_status"`
	ToStatus    PurchaseOrderStatus `json:"to_status"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, from, to PurchaseOrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, order.ID, AggregateTypePurchaseOrder),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderStatusChangedEvent) EventType() string {
	return EventTypePurchaseOrderStatusChanged
}

// PickupRecordedEvent is raised when goods are collected from the supplier
type PickupRecordedEvent struct {
	shared.BaseDomainEvent
	PickupID    uuid.UUID `json:"pickup_id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewPickupRecordedEvent creates a new PickupRecordedEvent
func NewPickupRecordedEvent(pickup *Pickup) *PickupRecordedEvent {
	return &PickupRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickupRecorded, pickup.ID, AggregateTypePickup),
		PickupID:        pickup.ID,
		OrderID:         pickup.OrderID,
		OrderNumber:     pickup.OrderNumber,
	}
}

// EventType returns the event type name
func (e *PickupRecordedEvent) EventType() string {
	return EventTypePickupRecorded
}

// PickupStatusChangedEvent is raised on pickup status transitions
type PickupStatusChangedEvent struct {
	shared.BaseDomainEvent
	PickupID   uuid.UUID    `json:"pickup_id"`
	OrderID    uuid.UUID    `json:"order_id"`
	FromStatus PickupStatus `json:"from_status"`
	ToStatus   PickupStatus `json:"to_status"`
}

// NewPickupStatusChangedEvent creates a new PickupStatusChangedEvent
func NewPickupStatusChangedEvent(pickup *Pickup, from, to PickupStatus) *PickupStatusChangedEvent {
	return &PickupStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickupStatusChanged, pickup.ID, AggregateTypePickup),
		PickupID:        pickup.ID,
		OrderID:         pickup.OrderID,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// EventType returns the event type name
func (e *PickupStatusChangedEvent) EventType() string {
	return EventTypePickupStatusChanged
}

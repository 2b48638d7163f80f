package ledger

import (
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeLedgerEntry   = "LedgerEntry"
	AggregateTypeInwardReceipt = "InwardReceipt"
	AggregateTypePurchaseOrder = "PurchaseOrder"
)

// Event type constants
const (
	EventTypeEntryCreated       = "LedgerEntryCreated"
	EventTypeStockAllocated     = "StockAllocated"
	EventTypeAllocationReversed = "AllocationReversed"
	EventTypeAllocationRefused  = "AllocationRefused"
	EventTypeEntriesRetired     = "LedgerEntriesRetired"
	EventTypeReceiptRecorded    = "InwardReceiptRecorded"
	EventTypeReceiptSkipped     = "InwardReceiptSkipped"
	EventTypeCommitmentRejected = "CommitmentRejected"
)

// EntryCreatedEvent is raised when an inward receipt line lands in the ledger
type EntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	ReceiptID   uuid.UUID       `json:"receipt_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewEntryCreatedEvent creates a new EntryCreatedEvent
func NewEntryCreatedEvent(entry *LedgerEntry) *EntryCreatedEvent {
	return &EntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryCreated, entry.ID, AggregateTypeLedgerEntry),
		EntryID:         entry.ID,
		ReceiptID:       entry.ReceiptID,
		WarehouseID:     entry.WarehouseID,
		ProductID:       entry.ProductID,
		SKU:             entry.SKU,
		Quantity:        entry.QuantityInward,
	}
}

// EventType returns the event type name
func (e *EntryCreatedEvent) EventType() string {
	return EventTypeEntryCreated
}

// StockAllocatedEvent is raised when an outward movement consumes ledger stock
type StockAllocatedEvent struct {
	shared.BaseDomainEvent
	DispatchID  uuid.UUID       `json:"dispatch_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	SKU         string          `json:"sku,omitempty"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	MatchMode   MatchMode       `json:"match_mode"`
	Quantity    decimal.Decimal `json:"quantity"`
	EntryCount  int             `json:"entry_count"`
}

// NewStockAllocatedEvent creates a new StockAllocatedEvent
func NewStockAllocatedEvent(dispatchID, warehouseID uuid.UUID, key ProductKey, result *AllocationResult) *StockAllocatedEvent {
	return &StockAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAllocated, dispatchID, AggregateTypeLedgerEntry),
		DispatchID:      dispatchID,
		WarehouseID:     warehouseID,
		SKU:             key.SKU,
		ProductID:       key.ProductID,
		MatchMode:       key.Mode(),
		Quantity:        result.TotalConsumed,
		EntryCount:      len(result.Consumptions),
	}
}

// EventType returns the event type name
func (e *StockAllocatedEvent) EventType() string {
	return EventTypeStockAllocated
}

// AllocationReversedEvent is raised when consumed stock is restored to the ledger
type AllocationReversedEvent struct {
	shared.BaseDomainEvent
	DispatchID  uuid.UUID       `json:"dispatch_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	EntryCount  int             `json:"entry_count"`
}

// NewAllocationReversedEvent creates a new AllocationReversedEvent
func NewAllocationReversedEvent(dispatchID, warehouseID uuid.UUID, result *ReversalResult) *AllocationReversedEvent {
	return &AllocationReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationReversed, dispatchID, AggregateTypeLedgerEntry),
		DispatchID:      dispatchID,
		WarehouseID:     warehouseID,
		Quantity:        result.TotalRestored,
		EntryCount:      len(result.Restorations),
	}
}

// EventType returns the event type name
func (e *AllocationReversedEvent) EventType() string {
	return EventTypeAllocationReversed
}

// EntriesRetiredEvent is raised when the entries of a deleted receipt are soft removed
type EntriesRetiredEvent struct {
	shared.BaseDomainEvent
	ReceiptID  uuid.UUID `json:"receipt_id"`
	EntryCount int       `json:"entry_count"`
}

// NewEntriesRetiredEvent creates a new EntriesRetiredEvent
func NewEntriesRetiredEvent(receiptID uuid.UUID, entryCount int) *EntriesRetiredEvent {
	return &EntriesRetiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntriesRetired, receiptID, AggregateTypeInwardReceipt),
		ReceiptID:       receiptID,
		EntryCount:      entryCount,
	}
}

// EventType returns the event type name
func (e *EntriesRetiredEvent) EventType() string {
	return EventTypeEntriesRetired
}

// ReceiptRecordedEvent is raised when an inward receipt is persisted
type ReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	ReceiptID   uuid.UUID `json:"receipt_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	LineCount   int       `json:"line_count"`
}

// NewReceiptRecordedEvent creates a new ReceiptRecordedEvent
func NewReceiptRecordedEvent(receipt *InwardReceipt) *ReceiptRecordedEvent {
	return &ReceiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptRecorded, receipt.ID, AggregateTypeInwardReceipt),
		ReceiptID:       receipt.ID,
		OrderNumber:     receipt.OrderNumber,
		LineCount:       len(receipt.Lines),
	}
}

// EventType returns the event type name
func (e *ReceiptRecordedEvent) EventType() string {
	return EventTypeReceiptRecorded
}

// ReceiptSkippedEvent is raised when a whole receipt is dropped because a
// line named a warehouse the registry does not know
type ReceiptSkippedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number,omitempty"`
	LineCount   int    `json:"line_count"`
}

// NewReceiptSkippedEvent creates a new ReceiptSkippedEvent
func NewReceiptSkippedEvent(receipt *InwardReceipt, lineCount int) *ReceiptSkippedEvent {
	return &ReceiptSkippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptSkipped, receipt.ID, AggregateTypeInwardReceipt),
		OrderNumber:     receipt.OrderNumber,
		LineCount:       lineCount,
	}
}

// EventType returns the event type name
func (e *ReceiptSkippedEvent) EventType() string {
	return EventTypeReceiptSkipped
}

// AllocationRefusedEvent is raised when a dispatch is turned away because the
// available stock cannot cover the requested quantity
type AllocationRefusedEvent struct {
	shared.BaseDomainEvent
	DispatchID  uuid.UUID       `json:"dispatch_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	SKU         string          `json:"sku,omitempty"`
	MatchMode   MatchMode       `json:"match_mode"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
}

// NewAllocationRefusedEvent creates a new AllocationRefusedEvent
func NewAllocationRefusedEvent(dispatchID uuid.UUID, key ProductKey, cause *InsufficientStockError) *AllocationRefusedEvent {
	return &AllocationRefusedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationRefused, dispatchID, AggregateTypeLedgerEntry),
		DispatchID:      dispatchID,
		WarehouseID:     cause.WarehouseID,
		SKU:             cause.SKU,
		MatchMode:       key.Mode(),
		Requested:       cause.Requested,
		Available:       cause.Available,
	}
}

// EventType returns the event type name
func (e *AllocationRefusedEvent) EventType() string {
	return EventTypeAllocationRefused
}

// CommitmentRejectedEvent is raised when a proposed receipt or pickup
// quantity would push an order line past its ordered ceiling
type CommitmentRejectedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	SKU         string          `json:"sku,omitempty"`
	Ordered     decimal.Decimal `json:"ordered"`
	Proposed    decimal.Decimal `json:"proposed"`
}

// NewCommitmentRejectedEvent creates a new CommitmentRejectedEvent
func NewCommitmentRejectedEvent(orderID uuid.UUID, cause *CommitmentExceededError) *CommitmentRejectedEvent {
	return &CommitmentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommitmentRejected, orderID, AggregateTypePurchaseOrder),
		OrderNumber:     cause.OrderNumber,
		SKU:             cause.SKU,
		Ordered:         cause.Ordered,
		Proposed:        cause.Proposed,
	}
}

// EventType returns the event type name
func (e *CommitmentRejectedEvent) EventType() string {
	return EventTypeCommitmentRejected
}

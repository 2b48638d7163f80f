package ledger

import (
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationRecord is one append-only audit row linking a dispatch to the
// ledger entry it drew from. Reversals append rows with Reversal set instead
// of deleting the originals, so the history of every dispatch survives edits.
type AllocationRecord struct {
	shared.BaseEntity
	DispatchID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"dispatch_id"`
	EntryID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"entry_id"`
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Reversal    bool            `gorm:"not null;default:false" json:"reversal"`
}

// TableName returns the table name for GORM
func (AllocationRecord) TableName() string {
	return "allocation_records"
}

// NewAllocationRecords builds audit rows for an applied allocation
func NewAllocationRecords(dispatchID, warehouseID uuid.UUID, result *AllocationResult) []AllocationRecord {
	records := make([]AllocationRecord, 0, len(result.Consumptions))
	for _, c := range result.Consumptions {
		records = append(records, AllocationRecord{
			BaseEntity:  shared.NewBaseEntity(),
			DispatchID:  dispatchID,
			EntryID:     c.EntryID,
			ReceiptID:   c.ReceiptID,
			WarehouseID: warehouseID,
			Quantity:    c.Consumed,
			Reversal:    false,
		})
	}
	return records
}

// NewReversalRecords builds audit rows for an applied reversal. Each row
// references the entry the stock went back to.
func NewReversalRecords(dispatchID, warehouseID uuid.UUID, entries []*LedgerEntry, result *ReversalResult) []AllocationRecord {
	receiptByEntry := make(map[uuid.UUID]uuid.UUID, len(entries))
	for _, entry := range entries {
		receiptByEntry[entry.ID] = entry.ReceiptID
	}
	records := make([]AllocationRecord, 0, len(result.Restorations))
	for _, r := range result.Restorations {
		records = append(records, AllocationRecord{
			BaseEntity:  shared.NewBaseEntity(),
			DispatchID:  dispatchID,
			EntryID:     r.EntryID,
			ReceiptID:   receiptByEntry[r.EntryID],
			WarehouseID: warehouseID,
			Quantity:    r.Restored,
			Reversal:    true,
		})
	}
	return records
}

// NetConsumed nets allocation rows against reversal rows for one dispatch
func NetConsumed(records []AllocationRecord) decimal.Decimal {
	net := decimal.Zero
	for _, rec := range records {
		if rec.Reversal {
			net = net.Sub(rec.Quantity)
		} else {
			net = net.Add(rec.Quantity)
		}
	}
	return net
}

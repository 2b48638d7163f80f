package trade

import (
	"context"
	"time"

	appledger "github.com/exportops/backend/internal/application/ledger"
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/partner"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Trimmed in-memory repositories: only the paths the order and pickup
// services walk are stateful, the rest satisfy the interfaces.

type memOrderRepo struct {
	orders map[uuid.UUID]trade.PurchaseOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]trade.PurchaseOrder)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok || o.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := o
	return &copy, nil
}

func (r *memOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	for _, o := range r.orders {
		if !o.DeletedAt.Valid && o.OrderNumber == orderNumber {
			copy := o
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	out := make([]trade.PurchaseOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if !o.DeletedAt.Valid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindByStatus(_ context.Context, status trade.PurchaseOrderStatus, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	out := make([]trade.PurchaseOrder, 0)
	for _, o := range r.orders {
		if !o.DeletedAt.Valid && o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Save(_ context.Context, order *trade.PurchaseOrder) error {
	r.orders[order.ID] = *order
	return nil
}

func (r *memOrderRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if o, ok := r.orders[id]; ok {
		o.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		r.orders[id] = o
	}
	return nil
}

func (r *memOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.orders)), nil
}

type memPickupRepo struct {
	pickups map[uuid.UUID]trade.Pickup
}

func newMemPickupRepo() *memPickupRepo {
	return &memPickupRepo{pickups: make(map[uuid.UUID]trade.Pickup)}
}

func (r *memPickupRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.Pickup, error) {
	p, ok := r.pickups[id]
	if !ok || p.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (r *memPickupRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]trade.Pickup, error) {
	out := make([]trade.Pickup, 0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid && p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPickupRepo) FindInTransit(_ context.Context, _ shared.Filter) ([]trade.Pickup, error) {
	out := make([]trade.Pickup, 0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid && p.IsInTransit() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPickupRepo) FindInTransitByOrder(_ context.Context, orderID uuid.UUID) ([]trade.Pickup, error) {
	out := make([]trade.Pickup, 0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid && p.OrderID == orderID && p.IsInTransit() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPickupRepo) Save(_ context.Context, pickup *trade.Pickup) error {
	r.pickups[pickup.ID] = *pickup
	return nil
}

func (r *memPickupRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.pickups[id]; ok {
		p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		r.pickups[id] = p
	}
	return nil
}

func (r *memPickupRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.pickups)), nil
}

type memReceiptRepo struct {
	receipts map[uuid.UUID]ledger.InwardReceipt
}

func newMemReceiptRepo() *memReceiptRepo {
	return &memReceiptRepo{receipts: make(map[uuid.UUID]ledger.InwardReceipt)}
}

func (r *memReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.InwardReceipt, error) {
	rec, ok := r.receipts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copy := rec
	return &copy, nil
}

func (r *memReceiptRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]ledger.InwardReceipt, error) {
	out := make([]ledger.InwardReceipt, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.receipts[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memReceiptRepo) FindByOrderNumber(_ context.Context, orderNumber string) ([]ledger.InwardReceipt, error) {
	out := make([]ledger.InwardReceipt, 0)
	for _, rec := range r.receipts {
		if rec.OrderNumber == orderNumber {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memReceiptRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.InwardReceipt, error) {
	out := make([]ledger.InwardReceipt, 0, len(r.receipts))
	for _, rec := range r.receipts {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memReceiptRepo) Save(_ context.Context, receipt *ledger.InwardReceipt) error {
	r.receipts[receipt.ID] = *receipt
	return nil
}

func (r *memReceiptRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.receipts, id)
	return nil
}

func (r *memReceiptRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.receipts)), nil
}

type memEntryRepo struct {
	entries map[uuid.UUID]ledger.LedgerEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[uuid.UUID]ledger.LedgerEntry)}
}

func (r *memEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copy := e
	return &copy, nil
}

func (r *memEntryRepo) FindByReceipt(_ context.Context, receiptID uuid.UUID) ([]ledger.LedgerEntry, error) {
	out := make([]ledger.LedgerEntry, 0)
	for _, e := range r.entries {
		if e.ReceiptID == receiptID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) FindByReceiptLine(_ context.Context, receiptLineID uuid.UUID) (*ledger.LedgerEntry, error) {
	for _, e := range r.entries {
		if e.ReceiptLineID == receiptLineID {
			copy := e
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) FindMatching(_ context.Context, _ uuid.UUID, _ ledger.ProductKey) ([]ledger.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) FindWithStock(_ context.Context, _ uuid.UUID, _ ledger.ProductKey) ([]ledger.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) FindByWarehouse(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]ledger.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) FindReceivedBefore(_ context.Context, _ time.Time, _ shared.Filter) ([]ledger.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) Save(_ context.Context, entry *ledger.LedgerEntry) error {
	r.entries[entry.ID] = *entry
	return nil
}

func (r *memEntryRepo) SaveAll(_ context.Context, entries []*ledger.LedgerEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = *e
	}
	return nil
}

func (r *memEntryRepo) UpdateWithVersion(_ context.Context, entry *ledger.LedgerEntry) error {
	r.entries[entry.ID] = *entry
	return nil
}

func (r *memEntryRepo) SoftDeleteUntouchedByReceipt(_ context.Context, receiptID uuid.UUID) (int64, error) {
	var retired int64
	for id, e := range r.entries {
		if e.ReceiptID == receiptID && e.QuantityOutward.IsZero() {
			delete(r.entries, id)
			retired++
		}
	}
	return retired, nil
}

func (r *memEntryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.entries)), nil
}

type memWarehouseRepo struct {
	known map[uuid.UUID]partner.Warehouse
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{known: make(map[uuid.UUID]partner.Warehouse)}
}

func (r *memWarehouseRepo) add(name string) *partner.Warehouse {
	warehouse, err := partner.NewWarehouse(name, name)
	if err != nil {
		panic(err)
	}
	r.known[warehouse.ID] = *warehouse
	return warehouse
}

func (r *memWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	w, ok := r.known[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copy := w
	return &copy, nil
}

func (r *memWarehouseRepo) FindByCode(_ context.Context, _ string) (*partner.Warehouse, error) {
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]partner.Warehouse, error) {
	out := make([]partner.Warehouse, 0, len(ids))
	for _, id := range ids {
		if w, ok := r.known[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *memWarehouseRepo) FindAll(_ context.Context, _ shared.Filter) ([]partner.Warehouse, error) {
	return nil, nil
}

func (r *memWarehouseRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	w, ok := r.known[id]
	return ok && w.IsActive(), nil
}

func (r *memWarehouseRepo) Save(_ context.Context, warehouse *partner.Warehouse) error {
	r.known[warehouse.ID] = *warehouse
	return nil
}

func (r *memWarehouseRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.known)), nil
}

// tradeFixture wires the services the way main does, minus the database
type tradeFixture struct {
	orderRepo     *memOrderRepo
	pickupRepo    *memPickupRepo
	receiptRepo   *memReceiptRepo
	entryRepo     *memEntryRepo
	warehouseRepo *memWarehouseRepo
	scope         *appledger.NoOpTransactionScope
	orders        *OrderService
	pickups       *PickupService
}

func newTradeFixture() *tradeFixture {
	f := &tradeFixture{
		orderRepo:     newMemOrderRepo(),
		pickupRepo:    newMemPickupRepo(),
		receiptRepo:   newMemReceiptRepo(),
		entryRepo:     newMemEntryRepo(),
		warehouseRepo: newMemWarehouseRepo(),
	}
	f.scope = appledger.NewNoOpTransactionScope(f.entryRepo, f.receiptRepo, nil, nil, f.orderRepo, f.pickupRepo)
	logger := zap.NewNop()
	commitments := appledger.NewCommitmentService(f.scope, logger)
	inward := appledger.NewInwardService(f.scope, f.warehouseRepo, commitments, logger)
	f.orders = NewOrderService(f.scope, commitments, logger)
	f.pickups = NewPickupService(f.scope, commitments, inward, logger)
	return f
}

func qty(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

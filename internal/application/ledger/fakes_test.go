package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/catalog"
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/partner"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func defaultFilter() shared.Filter {
	return shared.DefaultFilter()
}

// The fakes below hold aggregates as value copies, the way rows come back
// from a database: a caller mutating a returned entry does not change the
// stored state until it is saved, and UpdateWithVersion refuses stale stamps.

type fakeEntryRepo struct {
	entries map[uuid.UUID]ledger.LedgerEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[uuid.UUID]ledger.LedgerEntry)}
}

func (r *fakeEntryRepo) put(entry *ledger.LedgerEntry) {
	r.entries[entry.ID] = *entry
}

func (r *fakeEntryRepo) live() []ledger.LedgerEntry {
	out := make([]ledger.LedgerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if !e.DeletedAt.Valid {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	e, ok := r.entries[id]
	if !ok || e.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := e
	return &copy, nil
}

func (r *fakeEntryRepo) FindByReceipt(_ context.Context, receiptID uuid.UUID) ([]ledger.LedgerEntry, error) {
	out := make([]ledger.LedgerEntry, 0)
	for _, e := range r.live() {
		if e.ReceiptID == receiptID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindByReceiptLine(_ context.Context, receiptLineID uuid.UUID) (*ledger.LedgerEntry, error) {
	for _, e := range r.live() {
		if e.ReceiptLineID == receiptLineID {
			copy := e
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) FindMatching(_ context.Context, warehouseID uuid.UUID, key ledger.ProductKey) ([]ledger.LedgerEntry, error) {
	out := make([]ledger.LedgerEntry, 0)
	for _, e := range r.live() {
		if e.WarehouseID == warehouseID && key.Matches(&e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindWithStock(ctx context.Context, warehouseID uuid.UUID, key ledger.ProductKey) ([]ledger.LedgerEntry, error) {
	matching, err := r.FindMatching(ctx, warehouseID, key)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.LedgerEntry, 0, len(matching))
	for _, e := range matching {
		if e.HasStock() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) ([]ledger.LedgerEntry, error) {
	out := make([]ledger.LedgerEntry, 0)
	for _, e := range r.live() {
		if e.WarehouseID == warehouseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.LedgerEntry, error) {
	return r.live(), nil
}

func (r *fakeEntryRepo) FindReceivedBefore(_ context.Context, cutoff time.Time, _ shared.Filter) ([]ledger.LedgerEntry, error) {
	out := make([]ledger.LedgerEntry, 0)
	for _, e := range r.live() {
		if e.CreatedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) Save(_ context.Context, entry *ledger.LedgerEntry) error {
	r.put(entry)
	return nil
}

func (r *fakeEntryRepo) SaveAll(_ context.Context, entries []*ledger.LedgerEntry) error {
	for _, e := range entries {
		r.put(e)
	}
	return nil
}

func (r *fakeEntryRepo) UpdateWithVersion(_ context.Context, entry *ledger.LedgerEntry) error {
	stored, ok := r.entries[entry.ID]
	if !ok || stored.DeletedAt.Valid || stored.Version != entry.Version {
		return shared.ErrConcurrencyConflict
	}
	updated := *entry
	updated.Version = entry.Version + 1
	r.entries[entry.ID] = updated
	entry.IncrementVersion()
	return nil
}

func (r *fakeEntryRepo) SoftDeleteUntouchedByReceipt(_ context.Context, receiptID uuid.UUID) (int64, error) {
	var retired int64
	for id, e := range r.entries {
		if e.ReceiptID == receiptID && !e.DeletedAt.Valid && e.QuantityOutward.IsZero() {
			e.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
			r.entries[id] = e
			retired++
		}
	}
	return retired, nil
}

func (r *fakeEntryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.live())), nil
}

type fakeReceiptRepo struct {
	receipts map[uuid.UUID]ledger.InwardReceipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[uuid.UUID]ledger.InwardReceipt)}
}

func (r *fakeReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.InwardReceipt, error) {
	rec, ok := r.receipts[id]
	if !ok || rec.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := rec
	return &copy, nil
}

func (r *fakeReceiptRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]ledger.InwardReceipt, error) {
	out := make([]ledger.InwardReceipt, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.receipts[id]; ok && !rec.DeletedAt.Valid {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeReceiptRepo) FindByOrderNumber(_ context.Context, orderNumber string) ([]ledger.InwardReceipt, error) {
	out := make([]ledger.InwardReceipt, 0)
	for _, rec := range r.receipts {
		if !rec.DeletedAt.Valid && rec.OrderNumber == orderNumber {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeReceiptRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.InwardReceipt, error) {
	out := make([]ledger.InwardReceipt, 0, len(r.receipts))
	for _, rec := range r.receipts {
		if !rec.DeletedAt.Valid {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return out, nil
}

func (r *fakeReceiptRepo) Save(_ context.Context, receipt *ledger.InwardReceipt) error {
	r.receipts[receipt.ID] = *receipt
	return nil
}

func (r *fakeReceiptRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if rec, ok := r.receipts[id]; ok {
		rec.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		r.receipts[id] = rec
	}
	return nil
}

func (r *fakeReceiptRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	n := int64(0)
	for _, rec := range r.receipts {
		if !rec.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

type fakeDispatchRepo struct {
	dispatches map[uuid.UUID]ledger.OutwardDispatch
}

func newFakeDispatchRepo() *fakeDispatchRepo {
	return &fakeDispatchRepo{dispatches: make(map[uuid.UUID]ledger.OutwardDispatch)}
}

func (r *fakeDispatchRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.OutwardDispatch, error) {
	d, ok := r.dispatches[id]
	if !ok || d.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := d
	return &copy, nil
}

func (r *fakeDispatchRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) ([]ledger.OutwardDispatch, error) {
	out := make([]ledger.OutwardDispatch, 0)
	for _, d := range r.dispatches {
		if !d.DeletedAt.Valid && d.WarehouseID == warehouseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDispatchRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.OutwardDispatch, error) {
	out := make([]ledger.OutwardDispatch, 0, len(r.dispatches))
	for _, d := range r.dispatches {
		if !d.DeletedAt.Valid {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DispatchedAt.After(out[j].DispatchedAt) })
	return out, nil
}

func (r *fakeDispatchRepo) Save(_ context.Context, dispatch *ledger.OutwardDispatch) error {
	r.dispatches[dispatch.ID] = *dispatch
	return nil
}

func (r *fakeDispatchRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if d, ok := r.dispatches[id]; ok {
		d.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		r.dispatches[id] = d
	}
	return nil
}

func (r *fakeDispatchRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	n := int64(0)
	for _, d := range r.dispatches {
		if !d.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

type fakeRecordRepo struct {
	records []ledger.AllocationRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{}
}

func (r *fakeRecordRepo) FindByDispatch(_ context.Context, dispatchID uuid.UUID) ([]ledger.AllocationRecord, error) {
	out := make([]ledger.AllocationRecord, 0)
	for _, rec := range r.records {
		if rec.DispatchID == dispatchID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) FindByEntry(_ context.Context, entryID uuid.UUID) ([]ledger.AllocationRecord, error) {
	out := make([]ledger.AllocationRecord, 0)
	for _, rec := range r.records {
		if rec.EntryID == entryID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) SaveAll(_ context.Context, records []ledger.AllocationRecord) error {
	r.records = append(r.records, records...)
	return nil
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]trade.PurchaseOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]trade.PurchaseOrder)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok || o.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := o
	return &copy, nil
}

func (r *fakeOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	for _, o := range r.orders {
		if !o.DeletedAt.Valid && o.OrderNumber == orderNumber {
			copy := o
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	out := make([]trade.PurchaseOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if !o.DeletedAt.Valid {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderedAt.After(out[j].OrderedAt) })
	return out, nil
}

func (r *fakeOrderRepo) FindByStatus(_ context.Context, status trade.PurchaseOrderStatus, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	out := make([]trade.PurchaseOrder, 0)
	for _, o := range r.orders {
		if !o.DeletedAt.Valid && o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *trade.PurchaseOrder) error {
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if o, ok := r.orders[id]; ok {
		o.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		r.orders[id] = o
	}
	return nil
}

func (r *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	n := int64(0)
	for _, o := range r.orders {
		if !o.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

type fakePickupRepo struct {
	pickups map[uuid.UUID]trade.Pickup
}

func newFakePickupRepo() *fakePickupRepo {
	return &fakePickupRepo{pickups: make(map[uuid.UUID]trade.Pickup)}
}

func (r *fakePickupRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.Pickup, error) {
	p, ok := r.pickups[id]
	if !ok || p.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (r *fakePickupRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]trade.Pickup, error) {
	out := make([]trade.Pickup, 0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid && p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickupRepo) FindInTransit(_ context.Context, _ shared.Filter) ([]trade.Pickup, error) {
	out := make([]trade.Pickup, 0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid && p.IsInTransit() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickupRepo) FindInTransitByOrder(_ context.Context, orderID uuid.UUID) ([]trade.Pickup, error) {
	out := make([]trade.Pickup, 0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid && p.OrderID == orderID && p.IsInTransit() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickupRepo) Save(_ context.Context, pickup *trade.Pickup) error {
	r.pickups[pickup.ID] = *pickup
	return nil
}

func (r *fakePickupRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.pickups[id]; ok {
		p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		r.pickups[id] = p
	}
	return nil
}

func (r *fakePickupRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	n := int64(0)
	for _, p := range r.pickups {
		if !p.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

type fakeWarehouseRepo struct {
	warehouses map[uuid.UUID]partner.Warehouse
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{warehouses: make(map[uuid.UUID]partner.Warehouse)}
}

func (r *fakeWarehouseRepo) put(w *partner.Warehouse) {
	r.warehouses[w.ID] = *w
}

func (r *fakeWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok || w.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := w
	return &copy, nil
}

func (r *fakeWarehouseRepo) FindByCode(_ context.Context, code string) (*partner.Warehouse, error) {
	for _, w := range r.warehouses {
		if !w.DeletedAt.Valid && strings.EqualFold(w.Code, code) {
			copy := w
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeWarehouseRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]partner.Warehouse, error) {
	out := make([]partner.Warehouse, 0, len(ids))
	for _, id := range ids {
		if w, ok := r.warehouses[id]; ok && !w.DeletedAt.Valid {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWarehouseRepo) FindAll(_ context.Context, _ shared.Filter) ([]partner.Warehouse, error) {
	out := make([]partner.Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		if !w.DeletedAt.Valid {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWarehouseRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	w, ok := r.warehouses[id]
	return ok && !w.DeletedAt.Valid && w.IsActive(), nil
}

func (r *fakeWarehouseRepo) Save(_ context.Context, warehouse *partner.Warehouse) error {
	r.put(warehouse)
	return nil
}

func (r *fakeWarehouseRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	n := int64(0)
	for _, w := range r.warehouses {
		if !w.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *fakeProductRepo) put(p *catalog.Product) {
	r.products[p.ID] = *p
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok || p.DeletedAt.Valid {
		return nil, shared.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if !p.DeletedAt.Valid && strings.EqualFold(p.SKU, sku) {
			copy := p
			return &copy, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok && !p.DeletedAt.Valid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if !p.DeletedAt.Valid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.put(product)
	return nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	n := int64(0)
	for _, p := range r.products {
		if !p.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

// fixture bundles the fakes behind a transactionless scope
type fixture struct {
	entryRepo     *fakeEntryRepo
	receiptRepo   *fakeReceiptRepo
	dispatchRepo  *fakeDispatchRepo
	recordRepo    *fakeRecordRepo
	orderRepo     *fakeOrderRepo
	pickupRepo    *fakePickupRepo
	warehouseRepo *fakeWarehouseRepo
	productRepo   *fakeProductRepo
	scope         *NoOpTransactionScope
}

func newFixture() *fixture {
	f := &fixture{
		entryRepo:     newFakeEntryRepo(),
		receiptRepo:   newFakeReceiptRepo(),
		dispatchRepo:  newFakeDispatchRepo(),
		recordRepo:    newFakeRecordRepo(),
		orderRepo:     newFakeOrderRepo(),
		pickupRepo:    newFakePickupRepo(),
		warehouseRepo: newFakeWarehouseRepo(),
		productRepo:   newFakeProductRepo(),
	}
	f.scope = NewNoOpTransactionScope(f.entryRepo, f.receiptRepo, f.dispatchRepo, f.recordRepo, f.orderRepo, f.pickupRepo)
	return f
}

func (f *fixture) addWarehouse(name string) *partner.Warehouse {
	warehouse, err := partner.NewWarehouse(strings.ToUpper(name), name)
	if err != nil {
		panic(err)
	}
	f.warehouseRepo.put(warehouse)
	return warehouse
}

func (f *fixture) addEntry(warehouseID uuid.UUID, productID *uuid.UUID, sku string, quantity int64, createdAt time.Time) *ledger.LedgerEntry {
	entry, err := ledger.NewLedgerEntry(uuid.New(), uuid.New(), productID, sku, warehouseID, decimalFromInt(quantity))
	if err != nil {
		panic(err)
	}
	entry.CreatedAt = createdAt
	entry.UpdatedAt = createdAt
	entry.ClearDomainEvents()
	f.entryRepo.put(entry)
	return entry
}

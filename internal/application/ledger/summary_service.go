package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/catalog"
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/partner"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SummaryService projects the stock overview: one row per live ledger entry,
// joined with the provenance of its receipt and catalog display data, with
// status and age derived at read time. Nothing here is stored; the ledger
// entries are the only source of truth.
type SummaryService struct {
	scope         TransactionScope
	productRepo   catalog.ProductRepository
	warehouseRepo partner.WarehouseRepository
	logger        *zap.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	warehouseRepo partner.WarehouseRepository,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		scope:         scope,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// SummaryFilter narrows the stock overview
type SummaryFilter struct {
	WarehouseID *uuid.UUID          `form:"warehouse_id"`
	Status      *ledger.StockStatus `form:"status"`
	Search      string              `form:"search"`
	ListFilter
}

// StockSummary builds the overview rows
func (s *SummaryService) StockSummary(ctx context.Context, filter SummaryFilter) ([]ledger.SummaryRow, error) {
	var rows []ledger.SummaryRow
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		f := filter.ToFilter()
		f.OrderBy = "created_at"
		f.OrderDir = "asc"

		var entries []ledger.LedgerEntry
		var err error
		if filter.WarehouseID != nil {
			entries, err = repos.EntryRepo().FindByWarehouse(ctx, *filter.WarehouseID, f)
		} else {
			entries, err = repos.EntryRepo().FindAll(ctx, f)
		}
		if err != nil {
			return err
		}

		receipts, err := s.loadReceipts(ctx, repos, entries)
		if err != nil {
			return err
		}
		products, err := s.loadProducts(ctx, entries)
		if err != nil {
			return err
		}
		warehouses, err := s.loadWarehouses(ctx, entries)
		if err != nil {
			return err
		}
		inTransit, err := s.inTransitTotals(ctx, repos)
		if err != nil {
			return err
		}

		now := s.now()
		rows = make([]ledger.SummaryRow, 0, len(entries))
		for i := range entries {
			row := s.buildRow(&entries[i], receipts, products, warehouses, inTransit, now)
			if filter.Status != nil && row.Status != *filter.Status {
				continue
			}
			if filter.Search != "" && !matchesSearch(row, filter.Search) {
				continue
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SummaryService) buildRow(
	entry *ledger.LedgerEntry,
	receipts map[uuid.UUID]*ledger.InwardReceipt,
	products map[uuid.UUID]*catalog.Product,
	warehouses map[uuid.UUID]*partner.Warehouse,
	inTransit map[string]decimal.Decimal,
	now time.Time,
) ledger.SummaryRow {
	row := ledger.SummaryRow{
		EntryID:        entry.ID.String(),
		ReceiptID:      entry.ReceiptID.String(),
		SKU:            entry.SKU,
		WarehouseID:    entry.WarehouseID.String(),
		QuantityInward: entry.QuantityInward,
		RemainingStock: entry.RemainingStock,
		Status:         ledger.DeriveStatus(entry.RemainingStock),
		// Age counts from the last stock movement on the entry, not from
		// arrival. An entry consumed yesterday is one day old.
		AgeDays:    ledger.AgeDays(entry.UpdatedAt, now),
		ReceivedAt: entry.CreatedAt,
	}
	if entry.ProductID != nil {
		row.ProductID = entry.ProductID.String()
		if product, ok := products[*entry.ProductID]; ok {
			row.ProductName = product.Name
			row.Category = product.Category
			row.Color = product.Color
			if row.SKU == "" {
				row.SKU = product.SKU
			}
		}
	}
	if warehouse, ok := warehouses[entry.WarehouseID]; ok {
		row.WarehouseName = warehouse.Name
	}
	if receipt, ok := receipts[entry.ReceiptID]; ok {
		row.OrderNumber = receipt.OrderNumber
		row.InvoiceNumbers = receipt.InvoiceNumbers
		row.CompanyName = receipt.CompanyName
		row.ReceivedAt = receipt.ReceivedAt
		for _, line := range receipt.Lines {
			if line.ID == entry.ReceiptLineID {
				if line.Category != "" {
					row.Category = line.Category
				}
				if line.Color != "" {
					row.Color = line.Color
				}
				break
			}
		}
	}
	row.InTransit = inTransit[strings.ToLower(row.SKU)]
	return row
}

// inTransitTotals sums the quantities of all pickups still on the road, per
// SKU. A summary row carries its SKU's total so planners can see how much
// more of that product is coming.
func (s *SummaryService) inTransitTotals(ctx context.Context, repos TransactionalRepositories) (map[string]decimal.Decimal, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 1000
	pickups, err := repos.PickupRepo().FindInTransit(ctx, filter)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal)
	for i := range pickups {
		for _, line := range pickups[i].Lines {
			// One pickup line contributes to each SKU key once, even when
			// the line SKU and the catalog SKU coincide.
			keys := make(map[string]bool, 2)
			if line.SKU != "" {
				keys[strings.ToLower(line.SKU)] = true
			}
			if line.ProductID != nil {
				product, err := s.productRepo.FindByID(ctx, *line.ProductID)
				if err != nil && !errors.Is(err, shared.ErrNotFound) {
					return nil, err
				}
				if product != nil && product.SKU != "" {
					keys[strings.ToLower(product.SKU)] = true
				}
			}
			for key := range keys {
				totals[key] = totals[key].Add(line.Quantity)
			}
		}
	}
	return totals, nil
}

func (s *SummaryService) loadReceipts(ctx context.Context, repos TransactionalRepositories, entries []ledger.LedgerEntry) (map[uuid.UUID]*ledger.InwardReceipt, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	seen := make(map[uuid.UUID]bool, len(entries))
	for i := range entries {
		if !seen[entries[i].ReceiptID] {
			seen[entries[i].ReceiptID] = true
			ids = append(ids, entries[i].ReceiptID)
		}
	}
	receipts, err := repos.ReceiptRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*ledger.InwardReceipt, len(receipts))
	for i := range receipts {
		byID[receipts[i].ID] = &receipts[i]
	}
	return byID, nil
}

func (s *SummaryService) loadProducts(ctx context.Context, entries []ledger.LedgerEntry) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	seen := make(map[uuid.UUID]bool, len(entries))
	for i := range entries {
		if entries[i].ProductID != nil && !seen[*entries[i].ProductID] {
			seen[*entries[i].ProductID] = true
			ids = append(ids, *entries[i].ProductID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*catalog.Product{}, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func (s *SummaryService) loadWarehouses(ctx context.Context, entries []ledger.LedgerEntry) (map[uuid.UUID]*partner.Warehouse, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	seen := make(map[uuid.UUID]bool, len(entries))
	for i := range entries {
		if !seen[entries[i].WarehouseID] {
			seen[entries[i].WarehouseID] = true
			ids = append(ids, entries[i].WarehouseID)
		}
	}
	warehouses, err := s.warehouseRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*partner.Warehouse, len(warehouses))
	for i := range warehouses {
		byID[warehouses[i].ID] = &warehouses[i]
	}
	return byID, nil
}

func matchesSearch(row ledger.SummaryRow, search string) bool {
	search = strings.ToLower(search)
	for _, field := range []string{row.SKU, row.ProductName, row.OrderNumber, row.CompanyName, row.Category, row.Color, row.WarehouseName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultLowStockThreshold applies when no threshold is configured.
const defaultLowStockThreshold = 10

// GormStockMetricsProvider implements StockMetricsProvider using GORM.
// It aggregates the ledger_entries table per stock key, where a key is
// the (warehouse, product, sku) grouping used for availability.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

type warehouseKeyCount struct {
	WarehouseID uuid.UUID `gorm:"column:warehouse_id"`
	KeyCount    int64     `gorm:"column:key_count"`
}

func (p *GormStockMetricsProvider) keyTotals(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).
		Table("ledger_entries").
		Select("warehouse_id, product_id, sku, COALESCE(SUM(remaining_stock), 0) as total").
		Where("deleted_at IS NULL").
		Group("warehouse_id, product_id, sku")
}

// GetLowStockKeyCount returns, per warehouse, the number of stock keys with
// remaining quantity above zero but below the threshold.
func (p *GormStockMetricsProvider) GetLowStockKeyCount(ctx context.Context, threshold float64) (map[uuid.UUID]int64, error) {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}

	var results []warehouseKeyCount
	err := p.db.WithContext(ctx).
		Table("(?) as keys", p.keyTotals(ctx)).
		Select("warehouse_id, COUNT(*) as key_count").
		Where("total > 0 AND total < ?", threshold).
		Group("warehouse_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.WarehouseID] = r.KeyCount
	}

	return m, nil
}

// GetOutOfStockKeyCount returns, per warehouse, the number of stock keys
// whose summed remaining quantity is zero or negative.
func (p *GormStockMetricsProvider) GetOutOfStockKeyCount(ctx context.Context) (map[uuid.UUID]int64, error) {
	var results []warehouseKeyCount
	err := p.db.WithContext(ctx).
		Table("(?) as keys", p.keyTotals(ctx)).
		Select("warehouse_id, COUNT(*) as key_count").
		Where("total <= 0").
		Group("warehouse_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.WarehouseID] = r.KeyCount
	}

	return m, nil
}

var _ StockMetricsProvider = (*GormStockMetricsProvider)(nil)

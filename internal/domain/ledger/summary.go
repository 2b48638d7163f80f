package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus classifies a summary row by its remaining quantity
type StockStatus string

const (
	// StockStatusOutOfStock means nothing is left to allocate
	StockStatusOutOfStock StockStatus = "out_of_stock"
	// StockStatusLowStock means remaining stock is below the low stock threshold
	StockStatusLowStock StockStatus = "low_stock"
	// StockStatusNormal means remaining stock is at or above the threshold
	StockStatusNormal StockStatus = "normal"
)

// LowStockThreshold is the remaining quantity below which a row is flagged low
var LowStockThreshold = decimal.NewFromInt(10)

// DeriveStatus classifies a remaining quantity
func DeriveStatus(remaining decimal.Decimal) StockStatus {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return StockStatusOutOfStock
	}
	if remaining.LessThan(LowStockThreshold) {
		return StockStatusLowStock
	}
	return StockStatusNormal
}

// AgeDays is the whole number of days since the entry was last touched
func AgeDays(lastUpdated, now time.Time) int {
	if now.Before(lastUpdated) {
		return 0
	}
	return int(now.Sub(lastUpdated).Hours() / 24)
}

// SummaryRow is one line of the stock overview: a live ledger entry joined
// with the provenance of its receipt.
type SummaryRow struct {
	EntryID        string          `json:"entry_id"`
	ReceiptID      string          `json:"receipt_id"`
	ProductID      string          `json:"product_id,omitempty"`
	SKU            string          `json:"sku,omitempty"`
	ProductName    string          `json:"product_name,omitempty"`
	Category       string          `json:"category,omitempty"`
	Color          string          `json:"color,omitempty"`
	WarehouseID    string          `json:"warehouse_id"`
	WarehouseName  string          `json:"warehouse_name,omitempty"`
	OrderNumber    string          `json:"order_number,omitempty"`
	InvoiceNumbers []string        `json:"invoice_numbers,omitempty"`
	CompanyName    string          `json:"company_name,omitempty"`
	QuantityInward decimal.Decimal `json:"quantity_inward"`
	RemainingStock decimal.Decimal `json:"remaining_stock"`
	Status         StockStatus     `json:"status"`
	AgeDays        int             `json:"age_days"`
	InTransit      decimal.Decimal `json:"in_transit"`
	ReceivedAt     time.Time       `json:"received_at"`
}

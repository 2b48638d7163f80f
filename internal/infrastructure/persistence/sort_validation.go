package persistence

import (
	"strings"

	"github.com/exportops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not allowed.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"sku":             true,
	"warehouse_id":    true,
	"quantity_inward": true,
	"remaining_stock": true,
}

// ReceiptSortFields contains allowed sort fields for inward receipts
var ReceiptSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"company_name": true,
	"received_at":  true,
}

// DispatchSortFields contains allowed sort fields for outward dispatches
var DispatchSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sku":           true,
	"warehouse_id":  true,
	"quantity":      true,
	"status":        true,
	"dispatched_at": true,
}

// OrderSortFields contains allowed sort fields for purchase orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"ordered_at":   true,
}

// PickupSortFields contains allowed sort fields for pickups
var PickupSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"picked_up_at": true,
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// applySort applies validated ordering from the filter to the query.
func applySort(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir)
}

// applyPagination applies page-based pagination from the filter to the query.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

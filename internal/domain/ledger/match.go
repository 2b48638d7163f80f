package ledger

import (
	"strings"

	"github.com/google/uuid"
)

// MatchMode identifies how a request was matched against ledger entries.
type MatchMode string

const (
	// MatchModeProduct is an exact match on the product reference.
	MatchModeProduct MatchMode = "PRODUCT"
	// MatchModeSKUPrefix is the fallback used when no product reference is
	// available: an entry matches when its SKU is a case-insensitive prefix
	// of the requested SKU. "ABC-100" therefore matches a request for
	// "ABC-100-RED". The mode is deliberately carried forward from the
	// import boundary, which records bare SKUs without product references;
	// it can over-match short SKUs and is reported on every result so
	// callers can audit it.
	MatchModeSKUPrefix MatchMode = "SKU_PREFIX"
)

// ProductKey identifies the product side of a (product, warehouse) ledger
// pair: a product reference when available, otherwise a textual SKU.
type ProductKey struct {
	ProductID *uuid.UUID
	SKU       string
}

// NewProductKey builds a key from an optional product reference and SKU
func NewProductKey(productID *uuid.UUID, sku string) ProductKey {
	if productID != nil && *productID == uuid.Nil {
		productID = nil
	}
	return ProductKey{ProductID: productID, SKU: sku}
}

// IsZero returns true when the key identifies nothing
func (k ProductKey) IsZero() bool {
	return k.ProductID == nil && k.SKU == ""
}

// Mode returns the match mode the key resolves with
func (k ProductKey) Mode() MatchMode {
	if k.ProductID != nil {
		return MatchModeProduct
	}
	return MatchModeSKUPrefix
}

// Matches reports whether the ledger entry belongs to this key.
// Product references compare exactly; the SKU fallback matches when the
// entry's SKU is a case-insensitive prefix of the requested SKU.
func (k ProductKey) Matches(entry *LedgerEntry) bool {
	if k.ProductID != nil {
		return entry.ProductID != nil && *entry.ProductID == *k.ProductID
	}
	if k.SKU == "" || entry.SKU == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(k.SKU), strings.ToLower(entry.SKU))
}

// LockKey returns the serialization key for mutating operations on the
// (product, warehouse) pair. All writers for the same key go through the
// same single-writer lock.
func (k ProductKey) LockKey(warehouseID uuid.UUID) string {
	if k.ProductID != nil {
		return "ledger:" + warehouseID.String() + ":" + k.ProductID.String()
	}
	return "ledger:" + warehouseID.String() + ":sku:" + strings.ToLower(k.SKU)
}

// String returns a human-readable identity for error messages
func (k ProductKey) String() string {
	if k.ProductID != nil {
		return k.ProductID.String()
	}
	return k.SKU
}

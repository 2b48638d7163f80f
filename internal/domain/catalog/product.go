package catalog

import (
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a catalog item. The ledger references products by ID when it
// can and by SKU when historical rows predate the catalog.
type Product struct {
	shared.BaseAggregateRoot
	SKU      string        `gorm:"size:100;not null;uniqueIndex" json:"sku"`
	Name     string        `gorm:"size:200;not null" json:"name"`
	Category string        `gorm:"size:100;index" json:"category,omitempty"`
	Color    string        `gorm:"size:50" json:"color,omitempty"`
	Unit     string        `gorm:"size:20;default:'pcs'" json:"unit"`
	Status   ProductStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	Remark   string        `gorm:"size:500" json:"remark,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(sku, name, category, color string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Category:          category,
		Color:             color,
		Unit:              "pcs",
		Status:            ProductStatusActive,
	}, nil
}

// IsActive reports whether the product is live in the catalog
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Deactivate removes the product from active use
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

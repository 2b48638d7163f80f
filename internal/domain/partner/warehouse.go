package partner

import (
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// WarehouseStatus represents the status of a warehouse
type WarehouseStatus string

const (
	WarehouseStatusActive   WarehouseStatus = "active"
	WarehouseStatusInactive WarehouseStatus = "inactive"
)

// Warehouse is a physical location stock can be inwarded to. Receipt lines
// naming a warehouse the registry does not know are skipped at ingest.
type Warehouse struct {
	shared.BaseAggregateRoot
	Code        string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Status      WarehouseStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	ContactName string          `gorm:"size:100" json:"contact_name,omitempty"`
	Phone       string          `gorm:"size:50" json:"phone,omitempty"`
	Address     string          `gorm:"type:text" json:"address,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_CODE", "Warehouse code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_NAME", "Warehouse name cannot be empty")
	}
	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            WarehouseStatusActive,
	}, nil
}

// IsActive reports whether the warehouse accepts stock
func (w *Warehouse) IsActive() bool {
	return w.Status == WarehouseStatusActive
}

// Deactivate takes the warehouse out of service
func (w *Warehouse) Deactivate() {
	w.Status = WarehouseStatusInactive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// Activate puts the warehouse back in service
func (w *Warehouse) Activate() {
	w.Status = WarehouseStatusActive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

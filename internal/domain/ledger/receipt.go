package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceNumbers is a list of commercial invoice numbers stored as a JSON column
type InvoiceNumbers []string

// Scan implements the sql.Scanner interface
func (n *InvoiceNumbers) Scan(value any) error {
	if value == nil {
		*n = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, n)
	case string:
		return json.Unmarshal([]byte(v), n)
	default:
		return fmt.Errorf("ledger: cannot scan type %T into InvoiceNumbers", value)
	}
}

// Value implements the driver.Valuer interface
func (n InvoiceNumbers) Value() (driver.Value, error) {
	if n == nil {
		return "[]", nil
	}
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// String joins the numbers for display
func (n InvoiceNumbers) String() string {
	return strings.Join(n, ", ")
}

// InwardReceipt is the commercial document behind one goods arrival. The
// receipt carries all display provenance (order, invoices, company, category,
// color); ledger entries reference it and the projector joins the two at read
// time.
type InwardReceipt struct {
	shared.BaseAggregateRoot
	OrderNumber    string         `gorm:"size:100;index" json:"order_number"`
	InvoiceNumbers InvoiceNumbers `gorm:"type:text" json:"invoice_numbers"`
	CompanyName    string         `gorm:"size:200" json:"company_name"`
	ReceivedAt     time.Time      `gorm:"not null;index" json:"received_at"`
	Remark         string         `gorm:"size:500" json:"remark,omitempty"`

	Lines []InwardReceiptLine `gorm:"foreignKey:ReceiptID" json:"lines"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (InwardReceipt) TableName() string {
	return "inward_receipts"
}

// InwardReceiptLine is one product position on a receipt. Each line becomes
// exactly one ledger entry when the receipt is ingested.
type InwardReceiptLine struct {
	shared.BaseEntity
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	OrderLineID *uuid.UUID      `gorm:"type:uuid;index" json:"order_line_id,omitempty"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	SKU         string          `gorm:"size:100;index" json:"sku,omitempty"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Category    string          `gorm:"size:100" json:"category,omitempty"`
	Color       string          `gorm:"size:50" json:"color,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (InwardReceiptLine) TableName() string {
	return "inward_receipt_lines"
}

// NewInwardReceipt creates an inward receipt with its lines
func NewInwardReceipt(orderNumber string, invoiceNumbers []string, companyName string, receivedAt time.Time) (*InwardReceipt, error) {
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	receipt := &InwardReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       strings.TrimSpace(orderNumber),
		InvoiceNumbers:    invoiceNumbers,
		CompanyName:       strings.TrimSpace(companyName),
		ReceivedAt:        receivedAt,
	}
	return receipt, nil
}

// AddLine appends a product position to the receipt
func (r *InwardReceipt) AddLine(orderLineID, productID *uuid.UUID, sku string, warehouseID uuid.UUID, quantity decimal.Decimal, category, color string) (*InwardReceiptLine, error) {
	sku = strings.TrimSpace(sku)
	if productID == nil && sku == "" {
		return nil, NewValidationError("product", "receipt line requires a product or SKU")
	}
	if warehouseID == uuid.Nil {
		return nil, NewValidationError("warehouse_id", "receipt line requires a warehouse")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("quantity", "receipt line quantity must be positive")
	}

	line := InwardReceiptLine{
		BaseEntity:  shared.NewBaseEntity(),
		ReceiptID:   r.ID,
		OrderLineID: orderLineID,
		ProductID:   productID,
		SKU:         sku,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		Category:    category,
		Color:       color,
	}
	r.Lines = append(r.Lines, line)
	return &r.Lines[len(r.Lines)-1], nil
}

// TotalQuantity sums all line quantities
func (r *InwardReceipt) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// LineKey returns the product identity of a receipt line
func (l *InwardReceiptLine) LineKey() ProductKey {
	return NewProductKey(l.ProductID, l.SKU)
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Sale is a committed checkout. Rows are written once by the commit engine
// and never updated, so there is no UpdatedAt or soft delete.
type Sale struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// RequestID is the client supplied idempotency key, unique when present.
	RequestID     *string            `gorm:"size:64;uniqueIndex" json:"request_id,omitempty"`
	CashierID     *uuid.UUID         `gorm:"type:uuid;index" json:"cashier_id,omitempty"`
	PaymentMethod enum.PaymentMethod `gorm:"size:30;not null" json:"payment_method"`
	ServiceType   enum.ServiceType   `gorm:"size:20;not null" json:"service_type"`
	CustomerName  string             `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone string             `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerEmail string             `gorm:"size:255" json:"customer_email,omitempty"`
	DiscountID    *string            `gorm:"size:100" json:"discount_id,omitempty"`
	Note          string             `gorm:"type:text" json:"note,omitempty"`

	ItemsSubtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"items_subtotal"`
	ItemsDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"items_discount"`
	ServiceFee    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_fee"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	// DeclaredTotal is what the client computed; kept for audit, never used for money.
	DeclaredTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"declared_total"`
	AmountTendered decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_tendered"`
	Change         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"change"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:RESTRICT" json:"items"`
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one persisted line of a sale.
type SaleItem struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	SaleID      uint             `gorm:"not null;index" json:"sale_id"`
	Position    int              `gorm:"not null" json:"position"`
	ProductID   string           `gorm:"size:64;not null;index" json:"product_id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Category    string           `gorm:"size:100" json:"category,omitempty"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity    int              `gorm:"not null" json:"quantity"`
	Temperature enum.Temperature `gorm:"size:10" json:"temperature,omitempty"`
	AddOns      []AddOn          `gorm:"serializer:json;type:jsonb" json:"add_ons,omitempty"`

	DiscountType    string          `gorm:"size:50" json:"discount_type,omitempty"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	// LineTotal is unit price times quantity, before discount.
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// AddOnsPerUnit is the add-on cost already folded into UnitPrice.
func (i *SaleItem) AddOnsPerUnit() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range i.AddOns {
		sum = sum.Add(a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}
	return sum
}

// AddOn is an extra applied to every unit of a line, e.g. an extra shot.
type AddOn struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

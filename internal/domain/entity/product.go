package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. The catalog itself is maintained elsewhere;
// checkout only reads it and decrements Stock.
type Product struct {
	ID        string          `gorm:"size:64;primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Category  string          `gorm:"size:100;index" json:"category"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock     int             `gorm:"not null;check:chk_products_stock_non_negative,stock >= 0" json:"stock"`
	IsActive  bool            `gorm:"not null" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CanFulfil reports whether the product is sellable in the given quantity right now.
// This is advisory only; the stock decrement is the authoritative check.
func (p *Product) CanFulfil(quantity int) bool {
	return p.IsActive && p.Stock >= quantity
}

package entity

import (
	"github.com/sangkips/brewpos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReceiptDocument is the printable view of a committed sale.
// It is NOT a database entity; it is built from a Sale each time it is needed.
type ReceiptDocument struct {
	Header ReceiptHeader  `json:"header"`
	Meta   ReceiptMeta    `json:"meta"`
	Items  []ReceiptItem  `json:"items"`
	Totals ReceiptTotals  `json:"totals"`
	Tender *ReceiptTender `json:"tender,omitempty"`
	Footer []string       `json:"footer,omitempty"`
}

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Timestamp string `json:"timestamp"`
}

type ReceiptMeta struct {
	ReceiptNo     string `json:"receipt_no"`
	PaymentMethod string `json:"payment_method"`
	ServiceType   string `json:"service_type"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// ReceiptItem is one sale line as shown to the customer. BasePrice excludes
// add-ons, which are listed separately with their own amounts.
type ReceiptItem struct {
	Name        string           `json:"name"`
	Temperature enum.Temperature `json:"temperature,omitempty"`
	Quantity    int              `json:"quantity"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	Amount      decimal.Decimal  `json:"amount"`
	AddOns      []ReceiptAddOn   `json:"add_ons,omitempty"`
}

type ReceiptAddOn struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type ReceiptTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountLabel  string          `json:"discount_label,omitempty"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	ServiceLabel   string          `json:"service_label"`
	VATableSales   decimal.Decimal `json:"vatable_sales"`
	VAT            decimal.Decimal `json:"vat"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	Total          decimal.Decimal `json:"total"`
	CurrencySymbol string          `json:"currency_symbol,omitempty"`
}

// ReceiptTender is printed for cash sales only.
type ReceiptTender struct {
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
}

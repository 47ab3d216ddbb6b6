package service

import (
	"fmt"
	"time"

	"github.com/sangkips/brewpos-api/internal/config"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// receiptTimeLayout is the timestamp printed under the store name.
const receiptTimeLayout = "Jan 02, 2006 03:04 PM"

// DefaultVATRate is the Philippine VAT used when none is configured.
var DefaultVATRate = decimal.RequireFromString("0.12")

// ReceiptContext is the store level information printed around every sale.
type ReceiptContext struct {
	StoreName      string
	Subtitle       string
	Footer         []string
	VATRate        decimal.Decimal
	CurrencySymbol string
	Location       *time.Location
}

// NewReceiptContext builds a ReceiptContext from store configuration.
func NewReceiptContext(cfg *config.StoreConfig) ReceiptContext {
	return ReceiptContext{
		StoreName:      cfg.Name,
		Subtitle:       cfg.Subtitle,
		Footer:         cfg.Footer,
		VATRate:        cfg.VATRate,
		CurrencySymbol: cfg.CurrencySymbol,
		Location:       cfg.Location(),
	}
}

// BuildReceipt derives the printable receipt of a committed sale. It does no
// I/O, and the same sale and context always produce the same document.
func BuildReceipt(sale *entity.Sale, rc ReceiptContext) *entity.ReceiptDocument {
	loc := rc.Location
	if loc == nil {
		loc = time.UTC
	}
	rate := rc.VATRate
	if rate.IsNegative() {
		rate = DefaultVATRate
	}

	doc := &entity.ReceiptDocument{
		Header: entity.ReceiptHeader{
			Title:     rc.StoreName,
			Subtitle:  rc.Subtitle,
			Timestamp: sale.CreatedAt.In(loc).Format(receiptTimeLayout),
		},
		Meta: entity.ReceiptMeta{
			ReceiptNo:     FormatReceiptNo(sale.ID),
			PaymentMethod: sale.PaymentMethod.Label(),
			ServiceType:   sale.ServiceType.Label(),
			CustomerName:  sale.CustomerName,
			CustomerPhone: sale.CustomerPhone,
			CustomerEmail: sale.CustomerEmail,
		},
		Items: make([]entity.ReceiptItem, 0, len(sale.Items)),
	}

	for i := range sale.Items {
		doc.Items = append(doc.Items, receiptItem(&sale.Items[i]))
	}

	vatable, vat := SplitVAT(sale.Total, rate)
	doc.Totals = entity.ReceiptTotals{
		Subtotal:       sale.ItemsSubtotal,
		Discount:       sale.ItemsDiscount,
		DiscountLabel:  discountLabel(sale.Items),
		ServiceFee:     sale.ServiceFee,
		ServiceLabel:   sale.ServiceType.Label(),
		VATableSales:   vatable,
		VAT:            vat,
		VATRate:        rate,
		Total:          sale.Total,
		CurrencySymbol: rc.CurrencySymbol,
	}

	if sale.PaymentMethod.IsCash() {
		doc.Tender = &entity.ReceiptTender{
			Tendered: sale.AmountTendered,
			Change:   ChangeDue(sale.AmountTendered, sale.Total),
		}
	}

	if len(rc.Footer) > 0 {
		doc.Footer = append([]string(nil), rc.Footer...)
	}
	return doc
}

// receiptItem splits a line's unit price into the base drink and its add-ons.
func receiptItem(item *entity.SaleItem) entity.ReceiptItem {
	qty := decimal.NewFromInt(int64(item.Quantity))
	base := item.UnitPrice.Sub(item.AddOnsPerUnit())

	out := entity.ReceiptItem{
		Name:        item.Name,
		Temperature: item.Temperature,
		Quantity:    item.Quantity,
		BasePrice:   base,
		Amount:      base.Mul(qty),
	}
	for _, a := range item.AddOns {
		out.AddOns = append(out.AddOns, entity.ReceiptAddOn{
			Name:     a.Name,
			Quantity: a.Quantity,
			Amount:   a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity))).Mul(qty),
		})
	}
	return out
}

// discountLabel names the discount type when every discounted line agrees.
func discountLabel(items []entity.SaleItem) string {
	label := ""
	for _, item := range items {
		if item.DiscountAmount.IsZero() || item.DiscountType == "" {
			continue
		}
		switch {
		case label == "":
			label = item.DiscountType
		case label != item.DiscountType:
			return "Discount"
		}
	}
	return label
}

// SplitVAT splits a VAT inclusive total into VATable sales and VAT. The two
// parts always add back up to total exactly.
func SplitVAT(total, rate decimal.Decimal) (vatable, vat decimal.Decimal) {
	vatable = total.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
	return vatable, total.Sub(vatable)
}

// FormatReceiptNo renders a sale id as a zero padded receipt number.
func FormatReceiptNo(id uint) string {
	return fmt.Sprintf("%06d", id)
}

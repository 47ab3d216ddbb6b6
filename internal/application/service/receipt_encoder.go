package service

import (
	"fmt"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/printer"
	"github.com/shopspring/decimal"
)

const (
	// ReceiptWidth is the column count of 58mm paper at normal size.
	ReceiptWidth = printer.DefaultWidth

	maxItemNameLen = 18

	itemsHeader = "Item                Qty  Amount"

	addOnPrefix      = "  + "
	receiptFeedLines = 3
)

// EncodeOptions controls one encoding of a receipt.
type EncodeOptions struct {
	// OpenDrawer kicks the cash drawer before anything is printed.
	OpenDrawer bool
}

// EncodeReceipt renders a receipt document as an ESC/POS byte stream for
// 58mm paper. Every printed line fits in ReceiptWidth columns.
func EncodeReceipt(doc *entity.ReceiptDocument, opts EncodeOptions) ([]byte, error) {
	if doc == nil {
		return nil, &apperror.EncodingError{Reason: "receipt document is nil"}
	}
	if len(doc.Items) == 0 {
		return nil, &apperror.EncodingError{Reason: "receipt has no items"}
	}

	d := printer.NewDocument(ReceiptWidth)
	if opts.OpenDrawer {
		d.DrawerKick().DrawerKick()
	}

	// Header
	d.Line(printer.StyleTitle, fit(doc.Header.Title, ReceiptWidth/2))
	if doc.Header.Subtitle != "" {
		d.Line(printer.StyleCenter, fit(doc.Header.Subtitle, ReceiptWidth))
	}
	d.Line(printer.StyleCenter, fit(doc.Header.Timestamp, ReceiptWidth))
	d.Separator('-')

	metaLine(d, "Receipt #", doc.Meta.ReceiptNo)
	metaLine(d, "Payment", doc.Meta.PaymentMethod)
	metaLine(d, "Service", doc.Meta.ServiceType)
	metaLine(d, "Customer", doc.Meta.CustomerName)
	metaLine(d, "Phone", doc.Meta.CustomerPhone)
	metaLine(d, "Email", doc.Meta.CustomerEmail)
	d.Separator('-')

	// Items
	d.Line(printer.StyleBold, fmt.Sprintf("%-*s", ReceiptWidth, itemsHeader))
	for _, item := range doc.Items {
		d.Line(printer.StyleNormal, itemLine(item))
		for _, a := range item.AddOns {
			d.Line(printer.StyleNormal, addOnLine(a))
		}
	}
	d.Separator('-')

	// Totals
	t := doc.Totals
	pairLine(d, printer.StyleNormal, "Subtotal", money(t.Subtotal))
	if t.Discount.IsPositive() {
		label := "Discount"
		if t.DiscountLabel != "" && t.DiscountLabel != "Discount" {
			label = "Discount (" + t.DiscountLabel + ")"
		}
		pairLine(d, printer.StyleNormal, label, "-"+money(t.Discount))
	}
	if t.ServiceFee.IsPositive() {
		label := "Service Fee"
		if t.ServiceLabel != "" {
			label = "Service Fee (" + t.ServiceLabel + ")"
		}
		pairLine(d, printer.StyleNormal, label, money(t.ServiceFee))
	}
	pairLine(d, printer.StyleNormal, "VATable Sales", money(t.VATableSales))
	pairLine(d, printer.StyleNormal, fmt.Sprintf("VAT %s%%", t.VATRate.Mul(hundred).String()), money(t.VAT))
	pairLine(d, printer.StyleBold, "TOTAL", currency(t.CurrencySymbol, t.Total))

	if doc.Tender != nil {
		d.Separator('-')
		pairLine(d, printer.StyleNormal, "Cash", money(doc.Tender.Tendered))
		pairLine(d, printer.StyleNormal, "Change", money(doc.Tender.Change))
	}

	// Footer
	if len(doc.Footer) > 0 {
		d.Separator('-')
		for _, line := range doc.Footer {
			d.Line(printer.StyleCenter, fit(line, ReceiptWidth))
		}
	}

	d.FeedLines(receiptFeedLines).PartialCut()

	out := make([]byte, len(d.Bytes()))
	copy(out, d.Bytes())
	return out, nil
}

// EncodeDrawerKickOnly returns a job that opens the cash drawer and prints nothing.
func EncodeDrawerKickOnly() []byte {
	d := printer.NewDocument(ReceiptWidth).DrawerKick().DrawerKick()
	out := make([]byte, len(d.Bytes()))
	copy(out, d.Bytes())
	return out
}

// itemLine renders "Latte (Iced) x2        240.00". The name gives way first
// so that quantity and amount are never cut.
func itemLine(item entity.ReceiptItem) string {
	suffix := item.Temperature.ReceiptSuffix() + fmt.Sprintf(" x%d", item.Quantity)
	amount := money(item.Amount)

	budget := ReceiptWidth - len(suffix) - len(amount) - 1
	if budget > maxItemNameLen {
		budget = maxItemNameLen
	}
	name := printer.Truncate(printer.ToASCII(item.Name), budget)
	return printer.PadBetween(name+suffix, amount, ReceiptWidth)
}

func addOnLine(a entity.ReceiptAddOn) string {
	prefix := addOnPrefix
	if a.Quantity > 1 {
		prefix += fmt.Sprintf("%dx ", a.Quantity)
	}
	amount := money(a.Amount)
	name := printer.Truncate(printer.ToASCII(a.Name), ReceiptWidth-len(prefix)-len(amount)-1)
	return printer.PadBetween(prefix+name, amount, ReceiptWidth)
}

// pairLine prints a label and right aligned value; the label is shortened
// when both do not fit.
func pairLine(d *printer.Document, s printer.Style, label, value string) {
	value = printer.ToASCII(value)
	label = printer.Truncate(printer.ToASCII(label), d.Width()-len(value)-1)
	d.KeyValue(s, label, value)
}

func metaLine(d *printer.Document, label, value string) {
	if value == "" {
		return
	}
	d.Line(printer.StyleNormal, fit(label+": "+value, ReceiptWidth))
}

func fit(s string, width int) string {
	return printer.Truncate(printer.ToASCII(s), width)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func currency(symbol string, d decimal.Decimal) string {
	if symbol == "" {
		return money(d)
	}
	return symbol + " " + money(d)
}

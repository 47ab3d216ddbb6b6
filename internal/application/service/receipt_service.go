package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/email"
)

// ReceiptMailer sends receipt emails.
type ReceiptMailer interface {
	Configured() bool
	SendReceiptEmail(to string, receipt *email.ReceiptEmail) error
}

// ReceiptService rebuilds receipts of committed sales.
type ReceiptService struct {
	sales   repository.SaleRepository
	context ReceiptContext
	mailer  ReceiptMailer
}

// NewReceiptService creates a new receipt service. mailer may be nil, in
// which case emailing receipts is unavailable.
func NewReceiptService(sales repository.SaleRepository, rc ReceiptContext, mailer ReceiptMailer) *ReceiptService {
	return &ReceiptService{sales: sales, context: rc, mailer: mailer}
}

// Build derives the receipt of an already loaded sale.
func (s *ReceiptService) Build(sale *entity.Sale) *entity.ReceiptDocument {
	return BuildReceipt(sale, s.context)
}

// GetReceipt loads a sale and builds its receipt.
func (s *ReceiptService) GetReceipt(ctx context.Context, saleID uint) (*entity.ReceiptDocument, *entity.Sale, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	if sale == nil {
		return nil, nil, apperror.NewNotFoundError("Sale")
	}
	return s.Build(sale), sale, nil
}

// EmailReceipt sends the receipt of a sale to "to", or to the customer email
// captured at checkout when "to" is empty.
func (s *ReceiptService) EmailReceipt(ctx context.Context, saleID uint, to string) (*entity.ReceiptDocument, error) {
	if s.mailer == nil || !s.mailer.Configured() {
		return nil, apperror.NewAppError(http.StatusServiceUnavailable, "Email is not configured")
	}

	doc, sale, err := s.GetReceipt(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if to == "" {
		to = sale.CustomerEmail
	}
	if to == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "email", Message: "is required when the sale has no customer email"},
		})
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "email", Message: "must be a valid email address"},
		})
	}

	if err := s.mailer.SendReceiptEmail(to, ReceiptEmailFrom(doc)); err != nil {
		slog.Error("receipt email failed", "sale_id", saleID, "error", err.Error())
		return doc, apperror.NewAppError(http.StatusBadGateway, "Failed to send receipt email")
	}

	slog.Info("receipt emailed", "sale_id", saleID)
	return doc, nil
}

// ReceiptEmailFrom flattens a receipt document into email rows.
func ReceiptEmailFrom(doc *entity.ReceiptDocument) *email.ReceiptEmail {
	out := &email.ReceiptEmail{
		StoreName: doc.Header.Title,
		ReceiptNo: doc.Meta.ReceiptNo,
		Timestamp: doc.Header.Timestamp,
		Total:     currency(doc.Totals.CurrencySymbol, doc.Totals.Total),
		Footer:    doc.Footer,
	}

	for _, item := range doc.Items {
		out.Items = append(out.Items, email.ReceiptLine{
			Label:  fmt.Sprintf("%s%s x%d", item.Name, item.Temperature.ReceiptSuffix(), item.Quantity),
			Amount: money(item.Amount),
		})
		for _, a := range item.AddOns {
			label := "+ " + a.Name
			if a.Quantity > 1 {
				label = fmt.Sprintf("+ %dx %s", a.Quantity, a.Name)
			}
			out.Items = append(out.Items, email.ReceiptLine{Label: label, Amount: money(a.Amount), Indent: true})
		}
	}

	t := doc.Totals
	out.Totals = append(out.Totals, email.ReceiptLine{Label: "Subtotal", Amount: money(t.Subtotal)})
	if t.Discount.IsPositive() {
		out.Totals = append(out.Totals, email.ReceiptLine{Label: "Discount", Amount: "-" + money(t.Discount)})
	}
	if t.ServiceFee.IsPositive() {
		out.Totals = append(out.Totals, email.ReceiptLine{Label: "Service Fee (" + t.ServiceLabel + ")", Amount: money(t.ServiceFee)})
	}
	out.Totals = append(out.Totals,
		email.ReceiptLine{Label: "VATable Sales", Amount: money(t.VATableSales)},
		email.ReceiptLine{Label: fmt.Sprintf("VAT %s%%", t.VATRate.Mul(hundred).String()), Amount: money(t.VAT)},
	)
	return out
}

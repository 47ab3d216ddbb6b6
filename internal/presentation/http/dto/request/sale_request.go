package request

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/application/service"
	"github.com/sangkips/brewpos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest is the checkout payload sent by the POS. Field level
// checks beyond JSON shape are done by the sale service so they come back as
// a single 422 with every problem listed.
type CreateSaleRequest struct {
	RequestID      string             `json:"request_id" binding:"omitempty,max=64"`
	Lines          []SaleLineRequest  `json:"lines"`
	PaymentMethod  enum.PaymentMethod `json:"payment_method"`
	ServiceType    enum.ServiceType   `json:"service_type"`
	ServiceFee     decimal.Decimal    `json:"service_fee"`
	Customer       *CustomerRequest   `json:"customer"`
	Note           string             `json:"note" binding:"max=500"`
	Total          *decimal.Decimal   `json:"total"`
	AmountTendered decimal.Decimal    `json:"amount_tendered"`
	Print          *PrintOptions      `json:"print"`
}

// SaleLineRequest is one cart line. UnitPrice already includes its add-ons.
type SaleLineRequest struct {
	ProductID   string           `json:"product_id"`
	Name        string           `json:"name" binding:"max=255"`
	Category    string           `json:"category" binding:"max=100"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    int              `json:"quantity"`
	Temperature enum.Temperature `json:"temperature"`
	AddOns      []AddOnRequest   `json:"add_ons"`
	Discount    *DiscountRequest `json:"discount"`
}

type AddOnRequest struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type DiscountRequest struct {
	Type       string          `json:"type"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

type CustomerRequest struct {
	Name       string  `json:"name" binding:"max=255"`
	Phone      string  `json:"phone" binding:"max=50"`
	Email      string  `json:"email" binding:"omitempty,email"`
	DiscountID *string `json:"discount_id"`
}

// PrintOptions asks for the receipt to be printed right after the commit.
type PrintOptions struct {
	PrinterID  string `json:"printer_id"`
	OpenDrawer bool   `json:"open_drawer"`
}

// ToProposedSale converts the request into the commit engine input. The
// request id comes from the Idempotency-Key header when the body has none.
func (r *CreateSaleRequest) ToProposedSale(cashierID *uuid.UUID, idempotencyKey string) *service.ProposedSale {
	requestID := strings.TrimSpace(r.RequestID)
	if requestID == "" {
		requestID = idempotencyKey
	}

	in := &service.ProposedSale{
		RequestID:      requestID,
		CashierID:      cashierID,
		Lines:          make([]service.SaleLineInput, 0, len(r.Lines)),
		PaymentMethod:  r.PaymentMethod,
		ServiceType:    r.ServiceType,
		ServiceFee:     r.ServiceFee,
		Note:           r.Note,
		DeclaredTotal:  r.Total,
		AmountTendered: r.AmountTendered,
	}

	if r.Customer != nil {
		in.Customer = service.CustomerInput{
			Name:       strings.TrimSpace(r.Customer.Name),
			Phone:      strings.TrimSpace(r.Customer.Phone),
			Email:      strings.TrimSpace(r.Customer.Email),
			DiscountID: r.Customer.DiscountID,
		}
	}

	for _, l := range r.Lines {
		line := service.SaleLineInput{
			ProductID:   strings.TrimSpace(l.ProductID),
			Name:        l.Name,
			Category:    l.Category,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Temperature: l.Temperature,
		}
		for _, a := range l.AddOns {
			line.AddOns = append(line.AddOns, service.AddOnInput{Name: a.Name, UnitPrice: a.UnitPrice, Quantity: a.Quantity})
		}
		if l.Discount != nil {
			line.Discount = &service.DiscountInput{
				Type:    l.Discount.Type,
				Percent: l.Discount.Percentage,
				Amount:  l.Discount.Amount,
			}
		}
		in.Lines = append(in.Lines, line)
	}

	return in
}

// SaleFilterRequest holds the query parameters of the sale listing.
// Dates are YYYY-MM-DD and the end date is inclusive.
type SaleFilterRequest struct {
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
	RequestID     string `form:"request_id"`
	CashierID     string `form:"cashier_id"`
	PaymentMethod string `form:"payment_method"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/enum"
	"github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/clock"
	"github.com/sangkips/brewpos-api/pkg/errs"
	"github.com/sangkips/brewpos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const (
	maxRequestIDLength = 64

	// MaxLineQuantity caps one cart line and one add-on row.
	MaxLineQuantity = 1000
	// MaxProductQuantity caps the units of one product taken by a single sale.
	MaxProductQuantity = 10000
)

var (
	// TotalTolerance is how far a client total may drift from ours before we log it.
	TotalTolerance = decimal.RequireFromString("0.05")

	// MaxAmount is the largest value a decimal(12,2) money column holds.
	MaxAmount = decimal.RequireFromString("9999999999.99")

	hundred = decimal.NewFromInt(100)
)

// SaleLineInput is one cart line as proposed by the client. UnitPrice is tax
// inclusive and already contains the per-unit cost of the add-ons.
type SaleLineInput struct {
	ProductID   string
	Name        string
	Category    string
	UnitPrice   decimal.Decimal
	Quantity    int
	Temperature enum.Temperature
	AddOns      []AddOnInput
	Discount    *DiscountInput
}

type AddOnInput struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// DiscountInput is a percentage discount on one line. Amount is the client's
// own computation and is only compared against ours.
type DiscountInput struct {
	Type    string
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

type CustomerInput struct {
	Name       string
	Phone      string
	Email      string
	DiscountID *string
}

// ProposedSale is the input to Commit.
type ProposedSale struct {
	RequestID     string
	CashierID     *uuid.UUID
	Lines         []SaleLineInput
	PaymentMethod enum.PaymentMethod
	ServiceType   enum.ServiceType
	ServiceFee    decimal.Decimal
	Customer      CustomerInput
	Note          string
	// DeclaredTotal is the client's total, nil when it sent none.
	DeclaredTotal  *decimal.Decimal
	AmountTendered decimal.Decimal
}

// CommitResult is a committed sale. Replayed is set when the request id had
// already been committed and the stored sale is returned instead.
type CommitResult struct {
	Sale     *entity.Sale
	Replayed bool
}

// stockRequirement is the total quantity a sale takes from one product.
type stockRequirement struct {
	ProductID string
	Quantity  int
}

// SaleService commits checkouts: it validates the cart, reserves stock and
// appends the sale in one transaction.
type SaleService struct {
	products      repository.ProductRepository
	sales         repository.SaleRepository
	uow           repository.UnitOfWork
	clock         clock.Clock
	commitTimeout time.Duration
}

// NewSaleService creates a new sale service. commitTimeout <= 0 disables the
// service level deadline and leaves it to the caller's context.
func NewSaleService(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	uow repository.UnitOfWork,
	clk clock.Clock,
	commitTimeout time.Duration,
) *SaleService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &SaleService{
		products:      products,
		sales:         sales,
		uow:           uow,
		clock:         clk,
		commitTimeout: commitTimeout,
	}
}

// Commit turns a proposed sale into a committed one. Either every stock
// decrement and the sale row are written, or nothing is.
func (s *SaleService) Commit(ctx context.Context, in *ProposedSale) (*CommitResult, error) {
	if fieldErrors := validateProposedSale(in); len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	if s.commitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()
	}

	if in.RequestID != "" {
		existing, err := s.sales.GetByRequestID(ctx, in.RequestID)
		if err != nil {
			return nil, newPersistenceError(ctx, "look up request id", err)
		}
		if existing != nil {
			slog.Info("sale replayed", "sale_id", existing.ID, "request_id", in.RequestID)
			return &CommitResult{Sale: existing, Replayed: true}, nil
		}
	}

	requirements, err := aggregateLines(in.Lines)
	if err != nil {
		return nil, err
	}

	catalog, err := s.loadCatalog(ctx, requirements)
	if err != nil {
		return nil, err
	}
	if err := checkCatalog(in.Lines, requirements, catalog); err != nil {
		return nil, err
	}

	draft := s.draftSale(in, catalog)
	if fieldErrors := checkAmounts(draft); len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	var committed *entity.Sale
	err = s.uow.Within(ctx, func(ctx context.Context, tx repository.Tx) error {
		for _, req := range requirements {
			ok, err := tx.Products().TryDecrementStock(ctx, req.ProductID, req.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &apperror.StockRaceLostError{ProductID: req.ProductID}
			}
		}

		sale := cloneForInsert(draft)
		if err := tx.Sales().Append(ctx, sale); err != nil {
			return err
		}
		committed = sale
		return nil
	})
	if err != nil {
		var raceErr *apperror.StockRaceLostError
		if errors.As(err, &raceErr) {
			slog.Warn("stock race lost", "product_id", raceErr.ProductID, "request_id", in.RequestID)
			return nil, raceErr
		}
		if in.RequestID != "" && errs.Is(err, repository.ErrDuplicateRequestID) {
			if existing, lookupErr := s.sales.GetByRequestID(ctx, in.RequestID); lookupErr == nil && existing != nil {
				slog.Info("sale replayed after concurrent duplicate", "sale_id", existing.ID, "request_id", in.RequestID)
				return &CommitResult{Sale: existing, Replayed: true}, nil
			}
		}
		return nil, newPersistenceError(ctx, "commit sale", err)
	}

	slog.Info("sale committed",
		"sale_id", committed.ID,
		"total", committed.Total.StringFixed(2),
		"lines", len(committed.Items),
		"payment_method", committed.PaymentMethod)

	return &CommitResult{Sale: committed}, nil
}

// GetSale returns a committed sale by id.
func (s *SaleService) GetSale(ctx context.Context, id uint) (*entity.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales returns a page of committed sales, newest first.
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	sales, total, err := s.sales.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, p), nil
}

// GetProduct exposes the catalog entry so the UI can show current stock.
func (s *SaleService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

func (s *SaleService) loadCatalog(ctx context.Context, requirements []stockRequirement) (map[string]*entity.Product, error) {
	ids := make([]string, len(requirements))
	for i, r := range requirements {
		ids[i] = r.ProductID
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, newPersistenceError(ctx, "load products", err)
	}

	catalog := make(map[string]*entity.Product, len(products))
	for i := range products {
		catalog[products[i].ID] = &products[i]
	}
	return catalog, nil
}

// checkCatalog rejects unknown or inactive products, then runs the advisory
// stock check. Passing it does not guarantee the decrement will succeed.
func checkCatalog(lines []SaleLineInput, requirements []stockRequirement, catalog map[string]*entity.Product) error {
	var fieldErrors []apperror.FieldError
	for i, line := range lines {
		product, ok := catalog[line.ProductID]
		switch {
		case !ok:
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d].product_id", i),
				Message: fmt.Sprintf("product %s not found", line.ProductID),
			})
		case !product.IsActive:
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d].product_id", i),
				Message: fmt.Sprintf("product %s is not available", line.ProductID),
			})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}

	for _, req := range requirements {
		product := catalog[req.ProductID]
		if !product.CanFulfil(req.Quantity) {
			return &apperror.InsufficientStockError{
				ProductID: req.ProductID,
				Required:  req.Quantity,
				Available: product.Stock,
			}
		}
	}
	return nil
}

// aggregateLines sums quantities per product, ordered by product id so that
// concurrent commits lock rows in the same order. A product's total may not
// pass MaxProductQuantity; the check runs before each addition so the sum
// never overflows.
func aggregateLines(lines []SaleLineInput) ([]stockRequirement, error) {
	totals := make(map[string]int, len(lines))
	var fieldErrors []apperror.FieldError
	for i, line := range lines {
		sum := totals[line.ProductID]
		if line.Quantity < 1 || line.Quantity > MaxProductQuantity-sum {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: fmt.Sprintf("total quantity of product %s must be between 1 and %d", line.ProductID, MaxProductQuantity),
			})
			continue
		}
		totals[line.ProductID] = sum + line.Quantity
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	out := make([]stockRequirement, 0, len(totals))
	for id, qty := range totals {
		out = append(out, stockRequirement{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// checkAmounts rejects a priced sale whose figures would not fit the money columns.
func checkAmounts(sale *entity.Sale) []apperror.FieldError {
	var fieldErrors []apperror.FieldError
	for i, item := range sale.Items {
		if item.LineTotal.GreaterThan(MaxAmount) {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d]", i),
				Message: "line amount is too large",
			})
		}
	}
	if sale.ItemsSubtotal.GreaterThan(MaxAmount) || sale.Total.GreaterThan(MaxAmount) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "total", Message: "sale total is too large"})
	}
	return fieldErrors
}

// draftSale prices every line and computes the authoritative totals.
func (s *SaleService) draftSale(in *ProposedSale, catalog map[string]*entity.Product) *entity.Sale {
	items := make([]entity.SaleItem, len(in.Lines))
	for i, line := range in.Lines {
		items[i] = priceLine(i, line, catalog[line.ProductID])
		if line.Discount != nil && !line.Discount.Amount.IsZero() && !line.Discount.Amount.Equal(items[i].DiscountAmount) {
			slog.Debug("client discount differs from computed discount",
				"product_id", line.ProductID,
				"client", line.Discount.Amount.StringFixed(2),
				"computed", items[i].DiscountAmount.StringFixed(2))
		}
	}

	totals := ComputeTotals(items, in.ServiceFee)

	declared := totals.Total
	if in.DeclaredTotal != nil {
		declared = *in.DeclaredTotal
		if _, overridden := ReconcileTotal(declared, totals.Total); overridden {
			slog.Warn("client total overridden",
				"declared", declared.StringFixed(2),
				"computed", totals.Total.StringFixed(2),
				"request_id", in.RequestID)
		}
	}

	tendered := in.AmountTendered
	if tendered.IsZero() && !in.PaymentMethod.IsCash() {
		tendered = totals.Total
	}

	sale := &entity.Sale{
		CashierID:      in.CashierID,
		PaymentMethod:  in.PaymentMethod,
		ServiceType:    in.ServiceType,
		CustomerName:   in.Customer.Name,
		CustomerPhone:  in.Customer.Phone,
		CustomerEmail:  in.Customer.Email,
		DiscountID:     in.Customer.DiscountID,
		Note:           in.Note,
		ItemsSubtotal:  totals.ItemsSubtotal,
		ItemsDiscount:  totals.ItemsDiscount,
		ServiceFee:     in.ServiceFee,
		Total:          totals.Total,
		DeclaredTotal:  declared,
		AmountTendered: tendered,
		Change:         ChangeDue(tendered, totals.Total),
		CreatedAt:      s.clock.Now().UTC(),
		Items:          items,
	}
	if in.RequestID != "" {
		requestID := in.RequestID
		sale.RequestID = &requestID
	}
	return sale
}

func priceLine(position int, line SaleLineInput, product *entity.Product) entity.SaleItem {
	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)

	item := entity.SaleItem{
		Position:        position,
		ProductID:       line.ProductID,
		Name:            line.Name,
		Category:        line.Category,
		UnitPrice:       line.UnitPrice,
		Quantity:        line.Quantity,
		Temperature:     line.Temperature,
		DiscountPercent: decimal.Zero,
		DiscountAmount:  decimal.Zero,
		LineTotal:       gross,
	}
	if item.Name == "" && product != nil {
		item.Name = product.Name
	}
	if item.Category == "" && product != nil {
		item.Category = product.Category
	}

	for _, a := range line.AddOns {
		item.AddOns = append(item.AddOns, entity.AddOn{Name: a.Name, UnitPrice: a.UnitPrice, Quantity: a.Quantity})
	}

	if line.Discount != nil && line.Discount.Percent.IsPositive() {
		item.DiscountType = line.Discount.Type
		item.DiscountPercent = line.Discount.Percent
		item.DiscountAmount = LineDiscount(gross, line.Discount.Percent)
	}
	return item
}

// LineDiscount is percent of gross rounded to cents, never more than gross.
func LineDiscount(gross, percent decimal.Decimal) decimal.Decimal {
	amount := gross.Mul(percent).Div(hundred).Round(2)
	if amount.GreaterThan(gross) {
		return gross
	}
	return amount
}

// SaleTotals are the money figures of a sale.
type SaleTotals struct {
	ItemsSubtotal decimal.Decimal
	ItemsDiscount decimal.Decimal
	NetSubtotal   decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals sums priced lines:
//
//	itemsSubtotal = sum(unitPrice * qty)
//	itemsDiscount = sum(discount)
//	total         = itemsSubtotal - itemsDiscount + serviceFee
func ComputeTotals(items []entity.SaleItem, serviceFee decimal.Decimal) SaleTotals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
		discount = discount.Add(item.DiscountAmount)
	}
	net := subtotal.Sub(discount)
	return SaleTotals{
		ItemsSubtotal: subtotal,
		ItemsDiscount: discount,
		NetSubtotal:   net,
		Total:         net.Add(serviceFee),
	}
}

// ReconcileTotal returns the total to persist, which is always computed, and
// whether the declared total was off by more than TotalTolerance.
func ReconcileTotal(declared, computed decimal.Decimal) (decimal.Decimal, bool) {
	return computed, declared.Sub(computed).Abs().GreaterThan(TotalTolerance)
}

// ChangeDue is max(0, tendered - total).
func ChangeDue(tendered, total decimal.Decimal) decimal.Decimal {
	change := tendered.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// cloneForInsert copies the draft so a retried transaction starts from rows
// without database assigned ids.
func cloneForInsert(draft *entity.Sale) *entity.Sale {
	sale := *draft
	sale.ID = 0
	sale.Items = make([]entity.SaleItem, len(draft.Items))
	for i, item := range draft.Items {
		item.ID = 0
		item.SaleID = 0
		sale.Items[i] = item
	}
	return &sale
}

func newPersistenceError(ctx context.Context, op string, err error) error {
	ambiguous := ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
	slog.Error("sale persistence failed", "op", op, "ambiguous", ambiguous, "error", err.Error())
	return &apperror.PersistenceError{Op: op, Ambiguous: ambiguous, Err: err}
}

func validateProposedSale(in *ProposedSale) []apperror.FieldError {
	var fieldErrors []apperror.FieldError
	add := func(field, message string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: message})
	}

	if in == nil {
		add("lines", "at least one line item is required")
		return fieldErrors
	}

	if len(in.RequestID) > maxRequestIDLength {
		add("request_id", fmt.Sprintf("must be at most %d characters", maxRequestIDLength))
	}
	if len(in.Lines) == 0 {
		add("lines", "at least one line item is required")
	}

	for i, line := range in.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if line.ProductID == "" {
			add(prefix+".product_id", "is required")
		}
		if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
			add(prefix+".quantity", fmt.Sprintf("must be between 1 and %d", MaxLineQuantity))
		}
		if line.UnitPrice.IsNegative() {
			add(prefix+".unit_price", "must not be negative")
		} else if line.UnitPrice.GreaterThan(MaxAmount) {
			add(prefix+".unit_price", "is too large")
		} else if !isCents(line.UnitPrice) {
			add(prefix+".unit_price", "must have at most 2 decimal places")
		}
		if !line.Temperature.Valid() {
			add(prefix+".temperature", "must be hot or iced")
		}

		addOnCost := decimal.Zero
		for j, a := range line.AddOns {
			addOnPrefix := fmt.Sprintf("%s.add_ons[%d]", prefix, j)
			if a.Name == "" {
				add(addOnPrefix+".name", "is required")
			}
			if a.Quantity < 1 || a.Quantity > MaxLineQuantity {
				add(addOnPrefix+".quantity", fmt.Sprintf("must be between 1 and %d", MaxLineQuantity))
			}
			if a.UnitPrice.IsNegative() {
				add(addOnPrefix+".unit_price", "must not be negative")
			} else if a.UnitPrice.GreaterThan(MaxAmount) {
				add(addOnPrefix+".unit_price", "is too large")
			}
			addOnCost = addOnCost.Add(a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity))))
		}
		if addOnCost.GreaterThan(line.UnitPrice) {
			add(prefix+".unit_price", "must include the cost of its add-ons")
		}

		if d := line.Discount; d != nil {
			if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
				add(prefix+".discount.percentage", "must be between 0 and 100")
			}
			if d.Amount.IsNegative() {
				add(prefix+".discount.amount", "must not be negative")
			}
			if d.Percent.IsZero() && d.Amount.IsPositive() {
				add(prefix+".discount.percentage", "is required when a discount amount is given")
			}
		}
	}

	if !in.PaymentMethod.Valid() {
		add("payment_method", "must be one of cash, card, e-wallet")
	}
	if !in.ServiceType.Valid() {
		add("service_type", "must be dine-in or take-out")
	}
	if in.ServiceFee.IsNegative() {
		add("service_fee", "must not be negative")
	} else if in.ServiceFee.GreaterThan(MaxAmount) {
		add("service_fee", "is too large")
	} else if !isCents(in.ServiceFee) {
		add("service_fee", "must have at most 2 decimal places")
	}
	if in.AmountTendered.IsNegative() {
		add("amount_tendered", "must not be negative")
	} else if in.AmountTendered.GreaterThan(MaxAmount) {
		add("amount_tendered", "is too large")
	}
	if in.DeclaredTotal != nil && in.DeclaredTotal.Abs().GreaterThan(MaxAmount) {
		add("total", "is too large")
	}

	return fieldErrors
}

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

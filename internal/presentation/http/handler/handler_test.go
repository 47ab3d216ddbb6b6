package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/application/service"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/pagination"
	"github.com/sangkips/brewpos-api/pkg/printer"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

type HandlerSuite struct {
	suite.Suite

	sales    *mockSaleService
	printers *mockPrinterService
	receipts *mockReceiptService

	cashierID   uuid.UUID
	permissions []string
	router      *gin.Engine
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.sales = new(mockSaleService)
	s.printers = new(mockPrinterService)
	s.receipts = new(mockReceiptService)
	s.cashierID = uuid.New()
	s.permissions = []string{middleware.PermissionProcessSales, middleware.PermissionPrintReceipts}

	sales := NewSaleHandler(s.sales, s.printers)
	receipts := NewReceiptHandler(s.receipts)
	products := NewProductHandler(s.sales)
	printers := NewPrinterHandler(s.printers)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CashierIDKey, s.cashierID)
		c.Set(middleware.CashierPermissionsKey, s.permissions)
	})
	r.POST("/sales", middleware.Idempotency(false), sales.Create)
	r.GET("/sales", sales.List)
	r.GET("/sales/:id", sales.Get)
	r.GET("/sales/:id/receipt", receipts.Get)
	r.POST("/sales/:id/receipt/email", receipts.Email)
	r.GET("/products/:id", products.Get)
	r.GET("/printer/status", printers.GetStatus)
	r.POST("/printer/test", printers.TestPrint)
	r.POST("/printer/receipt", printers.PrintReceipt)
	r.POST("/printer/drawer", printers.OpenDrawer)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.sales.AssertExpectations(s.T())
	s.printers.AssertExpectations(s.T())
	s.receipts.AssertExpectations(s.T())
}

func (s *HandlerSuite) do(method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

const latteBody = `{
	"lines": [{"product_id": "LAT-001", "unit_price": "150.00", "quantity": 2, "temperature": "iced"}],
	"payment_method": "cash",
	"service_type": "dine-in",
	"amount_tendered": "500.00"
}`

func committedSale(id uint) *entity.Sale {
	return &entity.Sale{ID: id}
}

func (s *HandlerSuite) TestCreate_NewSale() {
	s.sales.On("Commit", mock.Anything, mock.MatchedBy(func(in *service.ProposedSale) bool {
		return in.RequestID == "reg1-0001" &&
			in.CashierID != nil && *in.CashierID == s.cashierID &&
			len(in.Lines) == 1 && in.Lines[0].Quantity == 2
	})).Return(&service.CommitResult{Sale: committedSale(7)}, nil)

	w, env := s.do(http.MethodPost, "/sales", latteBody, middleware.IdempotencyKeyHeader, "reg1-0001")

	s.Equal(http.StatusCreated, w.Code)
	s.Empty(w.Header().Get(middleware.ReplayedHeader))
	s.JSONEq(`{"sale": {"id": 7}, "replayed": false}`, trimSale(s, env.Data))
}

// trimSale keeps the fields the create tests assert on.
func trimSale(s *HandlerSuite, data json.RawMessage) string {
	var body struct {
		Sale struct {
			ID uint `json:"id"`
		} `json:"sale"`
		Replayed bool `json:"replayed"`
	}
	s.Require().NoError(json.Unmarshal(data, &body))
	out, err := json.Marshal(map[string]any{"sale": map[string]any{"id": body.Sale.ID}, "replayed": body.Replayed})
	s.Require().NoError(err)
	return string(out)
}

func (s *HandlerSuite) TestCreate_ReplayAnswersOKAndDoesNotPrint() {
	s.sales.On("Commit", mock.Anything, mock.Anything).
		Return(&service.CommitResult{Sale: committedSale(7), Replayed: true}, nil)

	body := `{"request_id": "reg1-0001", "lines": [{"product_id": "LAT-001", "unit_price": "150.00", "quantity": 1}],
		"payment_method": "cash", "service_type": "dine-in", "print": {"open_drawer": true}}`
	w, env := s.do(http.MethodPost, "/sales", body)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("true", w.Header().Get(middleware.ReplayedHeader))
	s.JSONEq(`{"sale": {"id": 7}, "replayed": true}`, trimSale(s, env.Data))
	s.printers.AssertNotCalled(s.T(), "PrintSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestCreate_RequestIDMismatch() {
	body := `{"request_id": "reg1-0002", "lines": [], "payment_method": "cash", "service_type": "dine-in"}`
	w, env := s.do(http.MethodPost, "/sales", body, middleware.IdempotencyKeyHeader, "reg1-0001")

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("validation", env.Kind)
	s.sales.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestCreate_MalformedJSON() {
	w, _ := s.do(http.MethodPost, "/sales", `{"lines": "nope"`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestCreate_InsufficientStock() {
	s.sales.On("Commit", mock.Anything, mock.Anything).
		Return(nil, &apperror.InsufficientStockError{ProductID: "LAT-001", Required: 3, Available: 2})

	w, env := s.do(http.MethodPost, "/sales", latteBody)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("insufficient_stock", env.Kind)
	s.JSONEq(`{"product_id": "LAT-001", "required": 3, "available": 2}`, string(env.Details))
}

func (s *HandlerSuite) TestCreate_AmbiguousTimeout() {
	s.sales.On("Commit", mock.Anything, mock.Anything).
		Return(nil, &apperror.PersistenceError{Op: "commit sale", Ambiguous: true, Err: errors.New("deadline exceeded")})

	w, env := s.do(http.MethodPost, "/sales", latteBody, middleware.IdempotencyKeyHeader, "reg1-0001")

	s.Equal(http.StatusGatewayTimeout, w.Code)
	s.Equal("persistence_failure", env.Kind)
}

func (s *HandlerSuite) TestCreate_PrintsAfterCommit() {
	sale := committedSale(7)
	doc := &entity.ReceiptDocument{Meta: entity.ReceiptMeta{ReceiptNo: "000007"}}
	s.sales.On("Commit", mock.Anything, mock.Anything).Return(&service.CommitResult{Sale: sale}, nil)
	s.printers.On("PrintSale", mock.Anything, sale, "bar", true).Return(doc, nil)

	body := `{"lines": [{"product_id": "LAT-001", "unit_price": "150.00", "quantity": 1}],
		"payment_method": "cash", "service_type": "dine-in", "print": {"printer_id": "bar", "open_drawer": true}}`
	w, env := s.do(http.MethodPost, "/sales", body)

	s.Equal(http.StatusCreated, w.Code)
	var data struct {
		Receipt      *entity.ReceiptDocument `json:"receipt"`
		PrintWarning string                  `json:"print_warning"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Require().NotNil(data.Receipt)
	s.Equal("000007", data.Receipt.Meta.ReceiptNo)
	s.Empty(data.PrintWarning)
}

func (s *HandlerSuite) TestCreate_PrinterFailureIsAWarning() {
	sale := committedSale(7)
	doc := &entity.ReceiptDocument{Meta: entity.ReceiptMeta{ReceiptNo: "000007"}}
	s.sales.On("Commit", mock.Anything, mock.Anything).Return(&service.CommitResult{Sale: sale}, nil)
	s.printers.On("PrintSale", mock.Anything, sale, "", false).
		Return(doc, &apperror.TransportError{PrinterID: "counter", Err: errors.New("connection refused")})

	body := `{"lines": [{"product_id": "LAT-001", "unit_price": "150.00", "quantity": 1}],
		"payment_method": "cash", "service_type": "dine-in", "print": {}}`
	w, env := s.do(http.MethodPost, "/sales", body)

	s.Equal(http.StatusCreated, w.Code, "a printer failure never fails the sale")
	var data struct {
		Receipt      *entity.ReceiptDocument `json:"receipt"`
		PrintWarning string                  `json:"print_warning"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.NotNil(data.Receipt)
	s.Contains(data.PrintWarning, "connection refused")
}

func (s *HandlerSuite) TestCreate_PrintNeedsPermission() {
	s.permissions = []string{middleware.PermissionProcessSales}
	s.sales.On("Commit", mock.Anything, mock.Anything).Return(&service.CommitResult{Sale: committedSale(7)}, nil)

	body := `{"lines": [{"product_id": "LAT-001", "unit_price": "150.00", "quantity": 1}],
		"payment_method": "cash", "service_type": "dine-in", "print": {}}`
	w, env := s.do(http.MethodPost, "/sales", body)

	s.Equal(http.StatusCreated, w.Code)
	s.Contains(string(env.Data), "permission to print")
	s.printers.AssertNotCalled(s.T(), "PrintSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestGetSale() {
	s.sales.On("GetSale", mock.Anything, uint(7)).Return(committedSale(7), nil)
	s.sales.On("GetSale", mock.Anything, uint(8)).Return(nil, apperror.NewNotFoundError("Sale"))

	w, _ := s.do(http.MethodGet, "/sales/7", "")
	s.Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodGet, "/sales/8", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("not_found", env.Kind)

	w, _ = s.do(http.MethodGet, "/sales/abc", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestListSales() {
	s.sales.On("ListSales", mock.Anything, mock.MatchedBy(func(p *repository.SaleFilterParams) bool {
		return p.Pagination.Page == 2 && p.Pagination.PerPage == 10 &&
			p.RequestID == "reg1-0001" &&
			p.StartDate != nil && p.StartDate.Format(dateLayout) == "2026-03-01" &&
			p.EndDate != nil && p.EndDate.Format(dateLayout) == "2026-03-05"
	})).Return(pagination.NewPaginatedResult([]entity.Sale{*committedSale(7)}, pagination.NewPagination(2, 10, 11)), nil)

	w, env := s.do(http.MethodGet, "/sales?page=2&per_page=10&request_id=reg1-0001&start_date=2026-03-01&end_date=2026-03-05", "")

	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"total_pages":2`)
}

func (s *HandlerSuite) TestListSales_BadFilters() {
	w, env := s.do(http.MethodGet, "/sales?start_date=03/01/2026&cashier_id=nope", "")

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("validation", env.Kind)
	s.sales.AssertNotCalled(s.T(), "ListSales", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestGetProduct() {
	s.sales.On("GetProduct", mock.Anything, "LAT-001").Return(&entity.Product{ID: "LAT-001", Stock: 2}, nil)
	s.sales.On("GetProduct", mock.Anything, "NOPE").Return(nil, apperror.NewNotFoundError("Product"))

	w, env := s.do(http.MethodGet, "/products/LAT-001", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"stock":2`)

	w, _ = s.do(http.MethodGet, "/products/NOPE", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestReceiptPreview() {
	doc := &entity.ReceiptDocument{Meta: entity.ReceiptMeta{ReceiptNo: "000007"}}
	s.receipts.On("GetReceipt", mock.Anything, uint(7)).Return(doc, committedSale(7), nil)

	w, env := s.do(http.MethodGet, "/sales/7/receipt", "")

	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"receipt_no":"000007"`)
}

func (s *HandlerSuite) TestEmailReceipt() {
	s.receipts.On("EmailReceipt", mock.Anything, uint(7), "").Return(&entity.ReceiptDocument{}, nil)
	s.receipts.On("EmailReceipt", mock.Anything, uint(7), "ana@example.com").Return(&entity.ReceiptDocument{}, nil)

	w, _ := s.do(http.MethodPost, "/sales/7/receipt/email", "")
	s.Equal(http.StatusOK, w.Code, "no body means the customer's own address")

	w, _ = s.do(http.MethodPost, "/sales/7/receipt/email", `{"email": "ana@example.com"}`)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/sales/7/receipt/email", `{"email": "not-an-email"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestPrinterStatus() {
	s.printers.On("GetStatus").Return([]printer.Status{{ID: "counter", Type: "network", Default: true, Configured: true}})

	w, env := s.do(http.MethodGet, "/printer/status", "")

	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"id":"counter"`)
}

func (s *HandlerSuite) TestPrintReceipt() {
	doc := &entity.ReceiptDocument{Meta: entity.ReceiptMeta{ReceiptNo: "000007"}}

	s.Run("printed", func() {
		s.printers.On("PrintSaleReceipt", mock.Anything, uint(7), "bar", false).Return(doc, nil).Once()
		w, env := s.do(http.MethodPost, "/printer/receipt", `{"sale_id": 7, "printer_id": "bar"}`)
		s.Equal(http.StatusOK, w.Code)
		s.NotContains(string(env.Data), "warning")
	})

	s.Run("transport failure still returns the receipt", func() {
		s.printers.On("PrintSaleReceipt", mock.Anything, uint(7), "", true).
			Return(doc, &apperror.TransportError{PrinterID: "counter", Err: errors.New("offline")}).Once()
		w, env := s.do(http.MethodPost, "/printer/receipt", `{"sale_id": 7, "open_drawer": true}`)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(string(env.Data), "offline")
		s.Contains(string(env.Data), "000007")
	})

	s.Run("unknown printer", func() {
		s.printers.On("PrintSaleReceipt", mock.Anything, uint(7), "kitchen", false).
			Return(nil, apperror.NewNotFoundError("Printer")).Once()
		w, _ := s.do(http.MethodPost, "/printer/receipt", `{"sale_id": 7, "printer_id": "kitchen"}`)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("missing sale id", func() {
		w, _ := s.do(http.MethodPost, "/printer/receipt", `{}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestTestPrintAndDrawer() {
	s.printers.On("TestPrint", mock.Anything, "").Return(&entity.ReceiptDocument{}, nil)
	s.printers.On("OpenDrawer", mock.Anything, "bar").Return(nil)
	s.printers.On("OpenDrawer", mock.Anything, "").
		Return(&apperror.TransportError{PrinterID: "counter", Err: errors.New("offline")})

	w, _ := s.do(http.MethodPost, "/printer/test", "")
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/printer/drawer", `{"printer_id": "bar"}`)
	s.Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodPost, "/printer/drawer", "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("transport_failure", env.Kind)
}

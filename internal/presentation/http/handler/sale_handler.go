package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/application/service"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/pagination"
)

// SaleService is the part of the checkout service the handlers use.
type SaleService interface {
	Commit(ctx context.Context, in *service.ProposedSale) (*service.CommitResult, error)
	GetSale(ctx context.Context, id uint) (*entity.Sale, error)
	ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error)
}

// SalePrinter prints the receipt of a sale that is already committed.
type SalePrinter interface {
	PrintSale(ctx context.Context, sale *entity.Sale, printerID string, openDrawer bool) (*entity.ReceiptDocument, error)
}

// SaleHandler handles checkout HTTP requests
type SaleHandler struct {
	sales   SaleService
	printer SalePrinter
}

// NewSaleHandler creates a new sale handler. printer may be nil when no
// receipt printer is configured.
func NewSaleHandler(sales SaleService, printer SalePrinter) *SaleHandler {
	return &SaleHandler{sales: sales, printer: printer}
}

// Create commits a sale. A replayed request id answers 200 with the original
// sale; a new sale answers 201. Printing happens after the commit and its
// failure only adds a warning.
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	headerKey := middleware.GetIdempotencyKey(c)
	if bodyKey := strings.TrimSpace(req.RequestID); bodyKey != "" && headerKey != "" && bodyKey != headerKey {
		response.ValidationError(c, []apperror.FieldError{
			{Field: "request_id", Message: "does not match the Idempotency-Key header"},
		})
		return
	}

	result, err := h.sales.Commit(c.Request.Context(), req.ToProposedSale(middleware.CashierID(c), headerKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := response.SaleCommitResponse{Sale: result.Sale, Replayed: result.Replayed}

	if req.Print != nil && !result.Replayed {
		resp.Receipt, resp.PrintWarning = h.print(c, result.Sale, req.Print)
	}

	if result.Replayed {
		c.Header(middleware.ReplayedHeader, "true")
		response.OK(c, "Sale already recorded", resp)
		return
	}
	response.Created(c, "Sale recorded", resp)
}

func (h *SaleHandler) print(c *gin.Context, sale *entity.Sale, opts *request.PrintOptions) (*entity.ReceiptDocument, string) {
	if h.printer == nil {
		return nil, "No receipt printer is configured"
	}
	if !middleware.HasPermission(c, middleware.PermissionPrintReceipts) {
		return nil, "You do not have permission to print receipts"
	}

	// The sale is already committed; a client disconnect must not abort the job.
	doc, err := h.printer.PrintSale(context.WithoutCancel(c.Request.Context()), sale, opts.PrinterID, opts.OpenDrawer)
	if err == nil {
		return doc, ""
	}

	var transportErr *apperror.TransportError
	if errors.As(err, &transportErr) {
		return doc, "Sale recorded but the receipt could not be printed: " + transportErr.Error()
	}
	return doc, apperror.GetAppError(err).Message
}

// Get returns a committed sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved", sale)
}

// List returns committed sales, newest first
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		RequestID:     strings.TrimSpace(filter.RequestID),
		PaymentMethod: filter.PaymentMethod,
	}

	var fieldErrors []apperror.FieldError
	if filter.StartDate != "" {
		start, err := time.Parse(dateLayout, filter.StartDate)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		} else {
			params.StartDate = &start
		}
	}
	if filter.EndDate != "" {
		end, err := time.Parse(dateLayout, filter.EndDate)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		} else {
			params.EndDate = &end
		}
	}
	if filter.CashierID != "" {
		cashierID, err := uuid.Parse(filter.CashierID)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cashier_id", Message: "must be a UUID"})
		} else {
			params.CashierID = &cashierID
		}
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(c, fieldErrors)
		return
	}

	result, err := h.sales.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Sales retrieved", result)
}

const dateLayout = "2006-01-02"

package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/printer"
)

// PrinterService drives the store's receipt printers.
type PrinterService interface {
	GetStatus() []printer.Status
	TestPrint(ctx context.Context, printerID string) (*entity.ReceiptDocument, error)
	PrintSaleReceipt(ctx context.Context, saleID uint, printerID string, openDrawer bool) (*entity.ReceiptDocument, error)
	OpenDrawer(ctx context.Context, printerID string) error
}

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the configured printers and whether they are reachable.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	req, ok := bindPrinterTarget(c)
	if !ok {
		return
	}

	receipt, err := h.printerService.TestPrint(c.Request.Context(), req.PrinterID)
	if printedWithWarning(c, receipt, err, "Test page sent to printer") {
		return
	}
	response.Error(c, err)
}

// PrintReceipt prints the receipt of a committed sale.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	receipt, err := h.printerService.PrintSaleReceipt(c.Request.Context(), req.SaleID, req.PrinterID, req.OpenDrawer)
	if printedWithWarning(c, receipt, err, "Receipt printed successfully") {
		return
	}
	response.Error(c, err)
}

// OpenDrawer kicks the cash drawer without printing.
func (h *PrinterHandler) OpenDrawer(c *gin.Context) {
	req, ok := bindPrinterTarget(c)
	if !ok {
		return
	}

	if err := h.printerService.OpenDrawer(c.Request.Context(), req.PrinterID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cash drawer opened", nil)
}

// printedWithWarning writes the response for a print job that either
// succeeded or failed only at the transport. In the second case the receipt
// is still returned so it can be shown on screen. It returns false when the
// caller has to report err itself.
func printedWithWarning(c *gin.Context, receipt *entity.ReceiptDocument, err error, okMessage string) bool {
	if err == nil {
		response.OK(c, okMessage, response.ReceiptResponse{Receipt: receipt})
		return true
	}

	var transportErr *apperror.TransportError
	if receipt != nil && errors.As(err, &transportErr) {
		response.OK(c, "Receipt generated but printing failed", response.ReceiptResponse{
			Receipt: receipt,
			Warning: transportErr.Error(),
		})
		return true
	}
	return false
}

func bindPrinterTarget(c *gin.Context) (request.PrinterTargetRequest, bool) {
	var req request.PrinterTargetRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return req, false
	}
	return req, true
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/enum"
	"github.com/sangkips/brewpos-api/pkg/apperror"
	"github.com/sangkips/brewpos-api/pkg/printer"
	"github.com/shopspring/decimal"
)

// PrinterService encodes receipts and sends them to the store's printers.
type PrinterService struct {
	registry *printer.Registry
	receipts *ReceiptService
	timeout  time.Duration
}

// NewPrinterService creates a new printer service. timeout bounds each job,
// including the time it waits behind other jobs for the same printer.
func NewPrinterService(registry *printer.Registry, receipts *ReceiptService, timeout time.Duration) *PrinterService {
	return &PrinterService{
		registry: registry,
		receipts: receipts,
		timeout:  timeout,
	}
}

// GetStatus returns every configured printer.
func (s *PrinterService) GetStatus() []printer.Status {
	return s.registry.Statuses()
}

// TestPrint prints a sample receipt. The document is returned even when
// printing fails so it can be shown on screen.
func (s *PrinterService) TestPrint(ctx context.Context, printerID string) (*entity.ReceiptDocument, error) {
	doc := s.receipts.Build(sampleSale())
	doc.Header.Subtitle = "PRINTER TEST"

	data, err := EncodeReceipt(doc, EncodeOptions{})
	if err != nil {
		return nil, err
	}
	return doc, s.send(ctx, printerID, data)
}

// PrintSaleReceipt reprints the receipt of a committed sale.
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, saleID uint, printerID string, openDrawer bool) (*entity.ReceiptDocument, error) {
	_, sale, err := s.receipts.GetReceipt(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return s.PrintSale(ctx, sale, printerID, openDrawer)
}

// PrintSale prints the receipt of sale. A failure to print never affects the
// sale; the document is returned alongside a TransportError.
func (s *PrinterService) PrintSale(ctx context.Context, sale *entity.Sale, printerID string, openDrawer bool) (*entity.ReceiptDocument, error) {
	doc := s.receipts.Build(sale)

	data, err := EncodeReceipt(doc, EncodeOptions{OpenDrawer: openDrawer})
	if err != nil {
		return nil, err
	}

	if err := s.send(ctx, printerID, data); err != nil {
		return doc, err
	}
	slog.Info("receipt printed", "sale_id", sale.ID, "printer", s.resolve(printerID), "drawer", openDrawer)
	return doc, nil
}

// OpenDrawer kicks the cash drawer without printing.
func (s *PrinterService) OpenDrawer(ctx context.Context, printerID string) error {
	if err := s.send(ctx, printerID, EncodeDrawerKickOnly()); err != nil {
		return err
	}
	slog.Info("cash drawer opened", "printer", s.resolve(printerID))
	return nil
}

func (s *PrinterService) send(ctx context.Context, printerID string, data []byte) error {
	err := s.registry.SendRaw(ctx, printerID, data, s.timeout)
	if err == nil {
		return nil
	}
	if errors.Is(err, printer.ErrUnknownPrinter) {
		return apperror.NewNotFoundError("Printer")
	}

	id := s.resolve(printerID)
	slog.Warn("printer job failed", "printer", id, "error", err.Error())
	return &apperror.TransportError{PrinterID: id, Err: err}
}

func (s *PrinterService) resolve(printerID string) string {
	if printerID == "" {
		return s.registry.DefaultID()
	}
	return printerID
}

// sampleSale is the fixed sale printed by TestPrint.
func sampleSale() *entity.Sale {
	return &entity.Sale{
		PaymentMethod:  enum.PaymentCash,
		ServiceType:    enum.ServiceDineIn,
		ItemsSubtotal:  decimal.RequireFromString("300.00"),
		ItemsDiscount:  decimal.Zero,
		ServiceFee:     decimal.Zero,
		Total:          decimal.RequireFromString("300.00"),
		AmountTendered: decimal.RequireFromString("500.00"),
		Change:         decimal.RequireFromString("200.00"),
		CreatedAt:      time.Now().UTC(),
		Items: []entity.SaleItem{
			{
				Name:        "Test Latte",
				UnitPrice:   decimal.RequireFromString("150.00"),
				Quantity:    2,
				Temperature: enum.TemperatureIced,
				AddOns: []entity.AddOn{
					{Name: "Extra shot", UnitPrice: decimal.RequireFromString("30.00"), Quantity: 1},
				},
				LineTotal: decimal.RequireFromString("300.00"),
			},
		},
	}
}

package handler

import (
	"context"

	"github.com/sangkips/brewpos-api/internal/application/service"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/pagination"
	"github.com/sangkips/brewpos-api/pkg/printer"
	"github.com/stretchr/testify/mock"
)

type mockSaleService struct {
	mock.Mock
}

func (m *mockSaleService) Commit(ctx context.Context, in *service.ProposedSale) (*service.CommitResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*service.CommitResult)
	return res, args.Error(1)
}

func (m *mockSaleService) GetSale(ctx context.Context, id uint) (*entity.Sale, error) {
	args := m.Called(ctx, id)
	sale, _ := args.Get(0).(*entity.Sale)
	return sale, args.Error(1)
}

func (m *mockSaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).(*pagination.PaginatedResult[entity.Sale])
	return res, args.Error(1)
}

func (m *mockSaleService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

type mockPrinterService struct {
	mock.Mock
}

func (m *mockPrinterService) GetStatus() []printer.Status {
	return m.Called().Get(0).([]printer.Status)
}

func (m *mockPrinterService) TestPrint(ctx context.Context, printerID string) (*entity.ReceiptDocument, error) {
	args := m.Called(ctx, printerID)
	doc, _ := args.Get(0).(*entity.ReceiptDocument)
	return doc, args.Error(1)
}

func (m *mockPrinterService) PrintSaleReceipt(ctx context.Context, saleID uint, printerID string, openDrawer bool) (*entity.ReceiptDocument, error) {
	args := m.Called(ctx, saleID, printerID, openDrawer)
	doc, _ := args.Get(0).(*entity.ReceiptDocument)
	return doc, args.Error(1)
}

func (m *mockPrinterService) PrintSale(ctx context.Context, sale *entity.Sale, printerID string, openDrawer bool) (*entity.ReceiptDocument, error) {
	args := m.Called(ctx, sale, printerID, openDrawer)
	doc, _ := args.Get(0).(*entity.ReceiptDocument)
	return doc, args.Error(1)
}

func (m *mockPrinterService) OpenDrawer(ctx context.Context, printerID string) error {
	return m.Called(ctx, printerID).Error(0)
}

type mockReceiptService struct {
	mock.Mock
}

func (m *mockReceiptService) GetReceipt(ctx context.Context, saleID uint) (*entity.ReceiptDocument, *entity.Sale, error) {
	args := m.Called(ctx, saleID)
	doc, _ := args.Get(0).(*entity.ReceiptDocument)
	sale, _ := args.Get(1).(*entity.Sale)
	return doc, sale, args.Error(2)
}

func (m *mockReceiptService) EmailReceipt(ctx context.Context, saleID uint, to string) (*entity.ReceiptDocument, error) {
	args := m.Called(ctx, saleID, to)
	doc, _ := args.Get(0).(*entity.ReceiptDocument)
	return doc, args.Error(1)
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/pkg/pagination"
)

// SaleRepository is the append-only sale ledger.
type SaleRepository interface {
	// Append inserts the sale and its items, assigning IDs.
	// Returns ErrDuplicateRequestID when the sale's request id already exists.
	Append(ctx context.Context, sale *entity.Sale) error
	// GetByID returns (nil, nil) when the sale does not exist.
	GetByID(ctx context.Context, id uint) (*entity.Sale, error)
	GetByRequestID(ctx context.Context, requestID string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination    *pagination.PaginationParams
	RequestID     string
	CashierID     *uuid.UUID
	PaymentMethod string
	StartDate     *time.Time
	EndDate       *time.Time
}

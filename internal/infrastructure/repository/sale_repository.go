package repository

import (
	"context"
	"errors"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/errs"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// Append inserts the sale together with its items. gorm writes the
// associations in the same statement batch, so callers that need atomicity
// with other writes must pass a transaction handle.
func (r *saleRepository) Append(ctx context.Context, sale *entity.Sale) error {
	err := r.db.WithContext(ctx).Create(sale).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Mark(err, domainRepo.ErrDuplicateRequestID)
	}
	if err != nil {
		return errs.Wrap(err, "append sale")
	}
	return nil
}

func (r *saleRepository) GetByID(ctx context.Context, id uint) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).Scopes(withItems).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrapf(err, "get sale %d", id)
	}
	return &sale, nil
}

func (r *saleRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).Scopes(withItems).First(&sale, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrapf(err, "get sale by request id %s", requestID)
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{}).Scopes(SaleFilterScope(params))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errs.Wrap(err, "count sales")
	}

	params.Pagination.Validate()
	err := query.Scopes(Paginate(params.Pagination), withItems).
		Order("created_at DESC, id DESC").
		Find(&sales).Error
	if err != nil {
		return nil, 0, errs.Wrap(err, "list sales")
	}

	return sales, total, nil
}

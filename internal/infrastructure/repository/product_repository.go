package repository

import (
	"context"
	"errors"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/errs"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository. db may be a
// transaction handle, in which case every call joins that transaction.
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrapf(err, "get product %s", id)
	}
	return &product, nil
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, errs.Wrap(err, "get products by ids")
	}
	return products, nil
}

// TryDecrementStock is the single serialization point for concurrent checkouts:
//
//	UPDATE products SET stock = stock - amount WHERE id = ? AND stock >= amount AND is_active
//
// The row lock taken by the UPDATE is held until the surrounding transaction ends.
func (r *productRepository) TryDecrementStock(ctx context.Context, id string, amount int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND stock >= ? AND is_active = ?", id, amount, true).
		Update("stock", gorm.Expr("stock - ?", amount))

	if result.Error != nil {
		return false, errs.Wrapf(result.Error, "decrement stock of %s", id)
	}

	return result.RowsAffected > 0, nil
}

package repository

import (
	"context"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
)

// ProductRepository is the catalog accessor used by checkout.
type ProductRepository interface {
	// GetByID returns (nil, nil) when the product does not exist.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Product, error)
	// TryDecrementStock decrements stock only if the product is active and has at least amount.
	// Returns (true, nil) if a row was updated, (false, nil) if the condition did not hold.
	TryDecrementStock(ctx context.Context, id string, amount int) (bool, error)
}

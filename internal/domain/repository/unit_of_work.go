package repository

import (
	"context"
	"errors"
)

// ErrDuplicateRequestID is returned by SaleRepository.Append when a sale with
// the same request id was already committed.
var ErrDuplicateRequestID = errors.New("sale with this request id already exists")

// Tx exposes repositories bound to one database transaction.
type Tx interface {
	Products() ProductRepository
	Sales() SaleRepository
}

// UnitOfWork runs fn inside a single transaction. If fn returns an error every
// write made through tx is rolled back. Implementations may run fn more than
// once when the database asks for a retry, so fn must not keep state between calls.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

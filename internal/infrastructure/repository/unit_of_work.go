package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/errs"
	"gorm.io/gorm"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"

	defaultMaxRetries = 3
	backoffBase       = 50 * time.Millisecond
)

var errMaxRetriesExceeded = errs.New("transaction failed after max retries")

type gormUnitOfWork struct {
	db         *gorm.DB
	maxRetries int
}

// NewUnitOfWork creates a gorm backed unit of work. maxRetries <= 0 uses the default.
func NewUnitOfWork(db *gorm.DB, maxRetries int) domainRepo.UnitOfWork {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &gormUnitOfWork{db: db, maxRetries: maxRetries}
}

// Within runs fn in a READ COMMITTED transaction. gorm rolls back when fn
// returns an error or panics. Serialization failures and deadlocks rerun fn
// from the start with exponential backoff.
func (u *gormUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx domainRepo.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}

	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		err := u.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
			return fn(ctx, &gormTx{db: gtx})
		}, opts)
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return err
		}
		if attempt == u.maxRetries {
			slog.Error("transaction failed after max retries",
				"attempts", attempt+1,
				"error", err.Error())
			return errs.Mark(err, errMaxRetriesExceeded)
		}

		waitTime := calculateBackoff(attempt, backoffBase)
		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	return waitTime + time.Duration(randInt63n(int64(waitTime/5)))
}

func randInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}

// gormTx hands out repositories bound to one transaction, built on first use.
type gormTx struct {
	db *gorm.DB

	products domainRepo.ProductRepository
	sales    domainRepo.SaleRepository
}

func (t *gormTx) Products() domainRepo.ProductRepository {
	if t.products == nil {
		t.products = NewProductRepository(t.db)
	}
	return t.products
}

func (t *gormTx) Sales() domainRepo.SaleRepository {
	if t.sales == nil {
		t.sales = NewSaleRepository(t.db)
	}
	return t.sales
}

package service

import (
	"context"
	"sort"
	"sync"

	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/errs"
)

// fakeStore is an in-memory catalog and sale ledger. A transaction holds mu
// for its whole duration and is rolled back by restoring a snapshot.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]entity.Product
	sales    []entity.Sale
	nextID   uint

	// beforeTx runs with the lock held, before the snapshot is taken. Tests
	// use it to land a "concurrent" write between the advisory check and
	// the transaction.
	beforeTx  func(s *fakeStore)
	appendErr error
	txCalls   int
}

func newFakeStore(products ...entity.Product) *fakeStore {
	s := &fakeStore{products: make(map[string]entity.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) repos() (*fakeProductRepo, *fakeSaleRepo, *fakeUoW) {
	return &fakeProductRepo{s: s}, &fakeSaleRepo{s: s}, &fakeUoW{s: s}
}

func (s *fakeStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *fakeStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// insertLocked appends a sale the way Append would; callers hold mu.
func (s *fakeStore) insertLocked(sale *entity.Sale) {
	s.nextID++
	sale.ID = s.nextID
	for i := range sale.Items {
		sale.Items[i].ID = uint(i + 1)
		sale.Items[i].SaleID = sale.ID
	}
	s.sales = append(s.sales, copySale(*sale))
}

type fakeSnapshot struct {
	products map[string]entity.Product
	sales    int
	nextID   uint
}

func (s *fakeStore) snapshot() fakeSnapshot {
	products := make(map[string]entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	return fakeSnapshot{products: products, sales: len(s.sales), nextID: s.nextID}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.products = snap.products
	s.sales = s.sales[:snap.sales]
	s.nextID = snap.nextID
}

func copySale(sale entity.Sale) entity.Sale {
	sale.Items = append([]entity.SaleItem(nil), sale.Items...)
	return sale
}

// locker takes the store lock unless the repository is bound to a transaction.
type locker struct {
	s    *fakeStore
	inTx bool
}

func (l locker) with(fn func()) {
	if !l.inTx {
		l.s.mu.Lock()
		defer l.s.mu.Unlock()
	}
	fn()
}

type fakeProductRepo struct {
	s    *fakeStore
	inTx bool
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	locker{r.s, r.inTx}.with(func() {
		if p, ok := r.s.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []string) ([]entity.Product, error) {
	var out []entity.Product
	locker{r.s, r.inTx}.with(func() {
		for _, id := range ids {
			if p, ok := r.s.products[id]; ok {
				out = append(out, p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) TryDecrementStock(_ context.Context, id string, amount int) (bool, error) {
	var ok bool
	locker{r.s, r.inTx}.with(func() {
		p, exists := r.s.products[id]
		if !exists || !p.IsActive || p.Stock < amount {
			return
		}
		p.Stock -= amount
		r.s.products[id] = p
		ok = true
	})
	return ok, nil
}

type fakeSaleRepo struct {
	s    *fakeStore
	inTx bool
}

func (r *fakeSaleRepo) Append(_ context.Context, sale *entity.Sale) error {
	var err error
	locker{r.s, r.inTx}.with(func() {
		if r.s.appendErr != nil {
			err = r.s.appendErr
			return
		}
		if sale.RequestID != nil {
			for _, existing := range r.s.sales {
				if existing.RequestID != nil && *existing.RequestID == *sale.RequestID {
					err = errs.Mark(errs.New("duplicate key value violates unique constraint"), repository.ErrDuplicateRequestID)
					return
				}
			}
		}
		r.s.insertLocked(sale)
	})
	return err
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id uint) (*entity.Sale, error) {
	var out *entity.Sale
	locker{r.s, r.inTx}.with(func() {
		for _, sale := range r.s.sales {
			if sale.ID == id {
				c := copySale(sale)
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *fakeSaleRepo) GetByRequestID(_ context.Context, requestID string) (*entity.Sale, error) {
	var out *entity.Sale
	locker{r.s, r.inTx}.with(func() {
		for _, sale := range r.s.sales {
			if sale.RequestID != nil && *sale.RequestID == requestID {
				c := copySale(sale)
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *fakeSaleRepo) List(_ context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	var matched []entity.Sale
	locker{r.s, r.inTx}.with(func() {
		for i := len(r.s.sales) - 1; i >= 0; i-- {
			sale := r.s.sales[i]
			if params.PaymentMethod != "" && string(sale.PaymentMethod) != params.PaymentMethod {
				continue
			}
			matched = append(matched, copySale(sale))
		}
	})

	total := int64(len(matched))
	start := params.Pagination.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Pagination.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeTx struct {
	products *fakeProductRepo
	sales    *fakeSaleRepo
}

func (t *fakeTx) Products() repository.ProductRepository { return t.products }
func (t *fakeTx) Sales() repository.SaleRepository       { return t.sales }

type fakeUoW struct {
	s *fakeStore
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	u.s.txCalls++
	if u.s.beforeTx != nil {
		u.s.beforeTx(u.s)
	}

	snap := u.s.snapshot()
	tx := &fakeTx{
		products: &fakeProductRepo{s: u.s, inTx: true},
		sales:    &fakeSaleRepo{s: u.s, inTx: true},
	}
	if err := fn(ctx, tx); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

var (
	_ repository.ProductRepository = (*fakeProductRepo)(nil)
	_ repository.SaleRepository    = (*fakeSaleRepo)(nil)
	_ repository.UnitOfWork        = (*fakeUoW)(nil)
)

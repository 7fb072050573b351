package use_cases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/application/ports"
	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	"github.com/brenobaldassim/cpsm-service/internal/domain/client"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/domain/sale"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/clock"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

// fakeStore backs the fake repositories with plain in-memory state. Writes
// only land here through a committed fake transaction.
type fakeStore struct {
	clients  map[string]*client.Client
	products map[string]*catalog.Product
	sales    []*sale.Sale
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:  make(map[string]*client.Client),
		products: make(map[string]*catalog.Product),
	}
}

func (s *fakeStore) addClient(id, name string) {
	s.clients[id] = &client.Client{ID: id, Name: name}
}

func (s *fakeStore) addProduct(id, name string, priceCents int64, stockQty int) {
	s.products[id] = &catalog.Product{ID: id, Name: name, PriceCents: priceCents, StockQty: stockQty}
}

type fakeClientRepo struct {
	store *fakeStore
}

func (r *fakeClientRepo) GetClientByID(ctx context.Context, id string) (*client.Client, error) {
	c, ok := r.store.clients[id]
	if !ok {
		return nil, domainErrors.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) ListClients(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	return nil, nil
}

func (r *fakeClientRepo) CreateClient(ctx context.Context, c *client.Client) error { return nil }
func (r *fakeClientRepo) UpdateClient(ctx context.Context, c *client.Client) error { return nil }

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) GetProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListProducts(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, p *catalog.Product) error { return nil }
func (r *fakeProductRepo) UpdateProduct(ctx context.Context, p *catalog.Product) error { return nil }

func (r *fakeProductRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	return false, errors.New("decrement outside transaction")
}

// fakeUnitOfWork stages all writes in a transaction scope and applies them to
// the store only on Commit, mirroring the real transactional behavior. It can
// inject transient conflicts at commit time.
type fakeUnitOfWork struct {
	store *fakeStore

	conflictsRemaining int
	beginCalls         int
	commitCalls        int
	rollbackCalls      int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (ports.UnitOfWorkTx, error) {
	u.beginCalls++
	return &fakeUnitOfWorkTx{
		uow:     u,
		scratch: make(map[string]int),
	}, nil
}

type fakeUnitOfWorkTx struct {
	uow        *fakeUnitOfWork
	scratch    map[string]int // product id -> stock within this tx
	stagedSale *sale.Sale
	committed  bool
	rolledBack bool
}

func (t *fakeUnitOfWorkTx) Products() ports.ProductRepository {
	return &txProductRepo{tx: t}
}

func (t *fakeUnitOfWorkTx) Sales() ports.SaleRepository {
	return &txSaleRepo{tx: t}
}

func (t *fakeUnitOfWorkTx) Commit() error {
	t.uow.commitCalls++

	if t.uow.conflictsRemaining > 0 {
		t.uow.conflictsRemaining--
		return fmt.Errorf("%w: serialization failure", domainErrors.ErrTransactionConflict)
	}

	for id, stock := range t.scratch {
		t.uow.store.products[id].StockQty = stock
	}
	if t.stagedSale != nil {
		t.uow.store.sales = append(t.uow.store.sales, t.stagedSale)
	}
	t.committed = true
	return nil
}

func (t *fakeUnitOfWorkTx) Rollback() error {
	if t.committed {
		return nil
	}
	if !t.rolledBack {
		t.rolledBack = true
		t.uow.rollbackCalls++
	}
	return nil
}

type txProductRepo struct {
	tx *fakeUnitOfWorkTx
}

func (r *txProductRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	stock, staged := r.tx.scratch[id]
	if !staged {
		p, ok := r.tx.uow.store.products[id]
		if !ok {
			return false, nil
		}
		stock = p.StockQty
	}

	if stock < qty {
		return false, nil
	}
	r.tx.scratch[id] = stock - qty
	return true, nil
}

func (r *txProductRepo) GetProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	return nil, errors.New("not supported in fake tx")
}

func (r *txProductRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	return nil, errors.New("not supported in fake tx")
}

func (r *txProductRepo) ListProducts(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	return nil, errors.New("not supported in fake tx")
}

func (r *txProductRepo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return errors.New("not supported in fake tx")
}

func (r *txProductRepo) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return errors.New("not supported in fake tx")
}

type txSaleRepo struct {
	tx *fakeUnitOfWorkTx
}

func (r *txSaleRepo) CreateSale(ctx context.Context, s *sale.Sale) error {
	r.tx.stagedSale = s
	return nil
}

func (r *txSaleRepo) GetSaleByID(ctx context.Context, id string) (*sale.Sale, error) {
	return nil, errors.New("not supported in fake tx")
}

func (r *txSaleRepo) ListSales(ctx context.Context, limit, offset int) ([]*sale.Sale, error) {
	return nil, errors.New("not supported in fake tx")
}

type fakeCache struct {
	invalidated []string
}

func (c *fakeCache) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	return nil, nil
}

func (c *fakeCache) SetProduct(ctx context.Context, p *catalog.Product, expiration time.Duration) error {
	return nil
}

func (c *fakeCache) InvalidateProduct(ctx context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	return nil
}

type engineFixture struct {
	store *fakeStore
	uow   *fakeUnitOfWork
	cache *fakeCache
	clk   *clock.MockClock
	uc    *CreateSaleUseCase
}

func newEngineFixture(t *testing.T, retryAttempts int) *engineFixture {
	t.Helper()

	store := newFakeStore()
	uow := &fakeUnitOfWork{store: store}
	cache := &fakeCache{}
	clk := clock.NewMockClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	log := logger.NewLoggerWithOutput(io.Discard)

	uc := NewCreateSaleUseCase(
		&fakeClientRepo{store: store},
		&fakeProductRepo{store: store},
		uow,
		cache,
		clk,
		log,
		retryAttempts,
	)

	return &engineFixture{store: store, uow: uow, cache: cache, clk: clk, uc: uc}
}

func TestCreateSaleHappyPath(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 1299, 10)
	f.store.addProduct("prod_b", "Gadget", 35, 20)

	s, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items: []sale.LineItemRequest{
			{ProductID: "prod_a", Quantity: 3},
			{ProductID: "prod_b", Quantity: 7},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.TotalCents != 3*1299+7*35 {
		t.Fatalf("unexpected total: %d", s.TotalCents)
	}
	if s.ClientName != "Ada" {
		t.Fatalf("unexpected client name: %q", s.ClientName)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}

	if got := f.store.products["prod_a"].StockQty; got != 7 {
		t.Fatalf("expected prod_a stock 7, got %d", got)
	}
	if got := f.store.products["prod_b"].StockQty; got != 13 {
		t.Fatalf("expected prod_b stock 13, got %d", got)
	}
	if len(f.store.sales) != 1 {
		t.Fatalf("expected 1 persisted sale, got %d", len(f.store.sales))
	}
	if len(f.cache.invalidated) != 2 {
		t.Fatalf("expected 2 cache invalidations, got %v", f.cache.invalidated)
	}
}

func TestCreateSaleDefaultsSaleDateToCommitTime(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 100, 5)

	s, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.SaleDate.Equal(f.clk.Now()) {
		t.Fatalf("expected sale date %v, got %v", f.clk.Now(), s.SaleDate)
	}
}

func TestCreateSaleRejectsEmptyItems(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{ClientID: "client_1"})
	if !errors.Is(err, domainErrors.ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if f.uow.beginCalls != 0 {
		t.Fatalf("expected no transaction for an invalid request")
	}
}

func TestCreateSaleRejectsNonPositiveQuantity(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 100, 5)

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 0}},
	})
	if !errors.Is(err, domainErrors.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCreateSaleClientNotFound(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addProduct("prod_a", "Widget", 100, 5)

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_missing",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 1}},
	})
	if !errors.Is(err, domainErrors.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestCreateSaleReportsMissingProducts(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_b", "Gadget", 35, 20)

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items: []sale.LineItemRequest{
			{ProductID: "prod_a", Quantity: 1},
			{ProductID: "prod_b", Quantity: 1},
			{ProductID: "prod_c", Quantity: 1},
		},
	})
	if !errors.Is(err, domainErrors.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	var notFound *domainErrors.ProductsNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductsNotFoundError, got %T", err)
	}
	if len(notFound.MissingIDs) != 2 || notFound.MissingIDs[0] != "prod_a" || notFound.MissingIDs[1] != "prod_c" {
		t.Fatalf("unexpected missing ids: %v", notFound.MissingIDs)
	}
}

func TestCreateSaleInsufficientStockListsEveryLine(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 500, 2)
	f.store.addProduct("prod_b", "Gadget", 900, 10)
	f.store.addProduct("prod_c", "Sprocket", 50, 0)

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items: []sale.LineItemRequest{
			{ProductID: "prod_a", Quantity: 5},
			{ProductID: "prod_b", Quantity: 3},
			{ProductID: "prod_c", Quantity: 1},
		},
	})
	if !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var stockErr *domainErrors.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %T", err)
	}
	if len(stockErr.Shortages) != 2 {
		t.Fatalf("expected 2 shortages, got %v", stockErr.Shortages)
	}

	want := "Widget: 5 requested, 2 available; Sprocket: 1 requested, 0 available"
	if stockErr.Error() != want {
		t.Fatalf("expected %q, got %q", want, stockErr.Error())
	}

	// Nothing may be written on rejection.
	if got := f.store.products["prod_b"].StockQty; got != 10 {
		t.Fatalf("expected prod_b stock untouched, got %d", got)
	}
	if len(f.store.sales) != 0 {
		t.Fatalf("expected no persisted sale, got %d", len(f.store.sales))
	}
	if f.uow.beginCalls != 0 {
		t.Fatalf("expected no transaction after a validation rejection")
	}
}

func TestCreateSalePriceCapturedAtSaleTime(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 1299, 10)

	s, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later price edit must not change what the sale recorded.
	f.store.products["prod_a"].PriceCents = 9999

	if s.Items[0].PriceCents != 1299 {
		t.Fatalf("expected captured price 1299, got %d", s.Items[0].PriceCents)
	}
	if s.TotalCents != 2598 {
		t.Fatalf("expected total 2598, got %d", s.TotalCents)
	}
	if persisted := f.store.sales[0]; persisted.TotalCents != 2598 {
		t.Fatalf("expected persisted total 2598, got %d", persisted.TotalCents)
	}
}

func TestCreateSaleDuplicateLinesOverdrawRefusedAtCommit(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_keep", "Anvil", 200, 9)
	f.store.addProduct("prod_a", "Widget", 500, 5)

	// Each duplicate line fits on its own (4 of 5) so validation passes;
	// the second conditional decrement refuses the combined 8.
	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items: []sale.LineItemRequest{
			{ProductID: "prod_keep", Quantity: 1},
			{ProductID: "prod_a", Quantity: 4},
			{ProductID: "prod_a", Quantity: 4},
		},
	})
	if !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var stockErr *domainErrors.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %T", err)
	}
	if len(stockErr.Shortages) != 1 {
		t.Fatalf("expected 1 shortage, got %v", stockErr.Shortages)
	}
	if s := stockErr.Shortages[0]; s.ProductID != "prod_a" || s.Requested != 8 || s.Available != 5 {
		t.Fatalf("expected cumulative shortage 8 of 5 for prod_a, got %+v", s)
	}

	// The already-applied decrements must not survive the rollback.
	if got := f.store.products["prod_keep"].StockQty; got != 9 {
		t.Fatalf("expected prod_keep stock untouched, got %d", got)
	}
	if got := f.store.products["prod_a"].StockQty; got != 5 {
		t.Fatalf("expected prod_a stock untouched, got %d", got)
	}
	if len(f.store.sales) != 0 {
		t.Fatalf("expected no persisted sale, got %d", len(f.store.sales))
	}
	if f.uow.rollbackCalls == 0 {
		t.Fatalf("expected the transaction to be rolled back")
	}
}

func TestCreateSaleRetriesTransientConflicts(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.uow.conflictsRemaining = 2
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 100, 10)

	s, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if s == nil {
		t.Fatalf("expected a sale")
	}

	if f.uow.commitCalls != 3 {
		t.Fatalf("expected 3 commit attempts, got %d", f.uow.commitCalls)
	}
	if got := f.store.products["prod_a"].StockQty; got != 8 {
		t.Fatalf("expected stock decremented exactly once, got %d", got)
	}
	if len(f.store.sales) != 1 {
		t.Fatalf("expected exactly 1 persisted sale, got %d", len(f.store.sales))
	}

	sleeps := f.clk.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != 50*time.Millisecond || sleeps[1] != 100*time.Millisecond {
		t.Fatalf("unexpected backoff sleeps: %v", sleeps)
	}
}

func TestCreateSaleRetryBudgetExhausted(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.uow.conflictsRemaining = 10
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 100, 10)

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 2}},
	})
	if !errors.Is(err, domainErrors.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}

	if f.uow.commitCalls != 3 {
		t.Fatalf("expected exactly 3 commit attempts, got %d", f.uow.commitCalls)
	}
	if got := f.store.products["prod_a"].StockQty; got != 10 {
		t.Fatalf("expected stock untouched, got %d", got)
	}
	if len(f.store.sales) != 0 {
		t.Fatalf("expected no persisted sale, got %d", len(f.store.sales))
	}
}

func TestCreateSaleDoesNotRetryNonTransientErrors(t *testing.T) {
	f := newEngineFixture(t, 3)
	f.store.addClient("client_1", "Ada")
	f.store.addProduct("prod_a", "Widget", 500, 2)

	_, err := f.uc.Execute(context.Background(), CreateSaleInput{
		ClientID: "client_1",
		Items:    []sale.LineItemRequest{{ProductID: "prod_a", Quantity: 5}},
	})
	if !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(f.clk.Sleeps()) != 0 {
		t.Fatalf("expected no backoff for a non-transient rejection")
	}
}

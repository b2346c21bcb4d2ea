package cart_test

import (
	"context"
	"sync"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/port"
)

type memStorage struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memStorage) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, port.ErrNotFound
	}

	return append([]byte(nil), m.data...), nil
}

func (m *memStorage) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.data = append([]byte(nil), data...)
	m.saves++

	return nil
}

func (m *memStorage) snapshot() ([]byte, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.data...), m.saves
}

type fakeCatalog struct {
	mu       sync.Mutex
	stock    map[int64]int
	products map[int64]domain.Product

	stockErr   error
	productErr error

	stockCalls   int
	productCalls int

	// when set, GetStock signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		stock:    make(map[int64]int),
		products: make(map[int64]domain.Product),
	}
}

func (f *fakeCatalog) with(p domain.Product, stock int) *fakeCatalog {
	f.products[p.ID] = p
	f.stock[p.ID] = stock
	return f
}

func (f *fakeCatalog) GetStock(_ context.Context, productID int64) (domain.Stock, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.stockCalls++

	if f.stockErr != nil {
		return domain.Stock{}, f.stockErr
	}

	amount, ok := f.stock[productID]
	if !ok {
		return domain.Stock{}, port.ErrNotFound
	}

	return domain.Stock{ID: productID, Amount: amount}, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.productCalls++

	if f.productErr != nil {
		return domain.Product{}, f.productErr
	}

	p, ok := f.products[productID]
	if !ok {
		return domain.Product{}, port.ErrNotFound
	}

	return p, nil
}

func (f *fakeCatalog) calls() (stock, product int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stockCalls, f.productCalls
}

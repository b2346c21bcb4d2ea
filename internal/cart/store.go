package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// Store owns the in-memory cart. Mutations are serialized: each one reads the
// current cart, validates it against the catalog, persists the result and only
// then replaces the in-memory copy.
type Store struct {
	storage  port.CartStorage
	catalog  port.Catalog
	notifier port.Notifier

	log    logrus.FieldLogger
	tracer trace.Tracer

	// held for the whole read-validate-persist cycle of a mutation
	sem *semaphore.Weighted

	mu   sync.RWMutex
	cart domain.Cart
}

type Option func(*Store)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		s.tracer = tracer
	}
}

// NewStore seeds the cart from storage. A missing or malformed snapshot
// results in an empty cart.
func NewStore(ctx context.Context, storage port.CartStorage, catalog port.Catalog, notifier port.Notifier, opts ...Option) (*Store, error) {
	if storage == nil || catalog == nil || notifier == nil {
		return nil, fmt.Errorf("storage, catalog and notifier are required")
	}

	s := &Store{
		storage:  storage,
		catalog:  catalog,
		notifier: notifier,
		log:      logrus.StandardLogger(),
		tracer:   otel.Tracer("cartstore"),
		sem:      semaphore.NewWeighted(1),
	}

	for _, opt := range opts {
		opt(s)
	}

	data, err := storage.Load(ctx)
	switch {
	case errors.Is(err, port.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("storage.Load: %w", err)
	}

	cart, err := domain.DecodeCart(data)
	if err != nil {
		s.log.WithError(err).Warn("stored cart is unreadable, starting with an empty cart")
		return s, nil
	}

	s.cart = cart
	return s, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cart.Clone()
}

func (s *Store) AddProduct(ctx context.Context, productID int64) (domain.Cart, error) {
	return s.mutate(ctx, OpAdd, productID, func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
		i := cart.IndexOf(productID)

		currentAmount := 0
		if i >= 0 {
			currentAmount = cart.Items[i].Amount
		}

		stock, err := s.catalog.GetStock(ctx, productID)
		if err != nil {
			return cart, fmt.Errorf("catalog.GetStock: %w", err)
		}

		desiredAmount := currentAmount + 1
		if desiredAmount > stock.Amount {
			return cart, ErrOutOfStock
		}

		if i >= 0 {
			cart.Items[i].Amount = desiredAmount
			return cart, nil
		}

		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return cart, fmt.Errorf("catalog.GetProduct: %w", err)
		}
		if product.ID != productID {
			return cart, fmt.Errorf("catalog returned product[%d]", product.ID)
		}

		product.Amount = 1
		cart.Items = append(cart.Items, product)

		return cart, nil
	})
}

func (s *Store) RemoveProduct(ctx context.Context, productID int64) (domain.Cart, error) {
	return s.mutate(ctx, OpRemove, productID, func(_ context.Context, cart domain.Cart) (domain.Cart, error) {
		i := cart.IndexOf(productID)
		if i < 0 {
			return cart, ErrNotInCart
		}

		cart.Items = slices.Delete(cart.Items, i, i+1)
		return cart, nil
	})
}

// UpdateProductAmount sets the amount of a product already in the cart.
// Amounts below 1 are ignored without notification; removal is done with
// RemoveProduct.
func (s *Store) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) (domain.Cart, error) {
	if req.Amount < 1 {
		return s.Cart(), nil
	}

	return s.mutate(ctx, OpUpdate, req.ProductID, func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
		stock, err := s.catalog.GetStock(ctx, req.ProductID)
		if err != nil {
			return cart, fmt.Errorf("catalog.GetStock: %w", err)
		}

		if req.Amount > stock.Amount {
			return cart, ErrOutOfStock
		}

		i := cart.IndexOf(req.ProductID)
		if i < 0 {
			return cart, ErrNotInCart
		}

		cart.Items[i].Amount = req.Amount
		return cart, nil
	}, attribute.Int("app.amount", req.Amount))
}

type mutation func(ctx context.Context, cart domain.Cart) (domain.Cart, error)

func (s *Store) mutate(ctx context.Context, op Op, productID int64, fn mutation, attrs ...attribute.KeyValue) (_ domain.Cart, opErr error) {
	ctx, span := s.tracer.Start(ctx, "cart."+string(op))
	defer span.End()
	span.SetAttributes(append(attrs, attribute.Int64("app.product_id", productID))...)

	log := s.log.WithFields(logrus.Fields{"op": op, "product_id": productID})

	defer func() {
		if opErr == nil {
			return
		}

		var e *OpError
		if errors.As(opErr, &e) {
			s.notifier.NotifyError(ctx, e.Message())
		}

		span.RecordError(opErr)
		span.SetStatus(codes.Error, opErr.Error())
		log.WithError(opErr).Debug("cart mutation rejected")
	}()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return s.Cart(), &OpError{Op: op, ProductID: productID, Err: fmt.Errorf("sem.Acquire: %w", err)}
	}
	defer s.sem.Release(1)

	current := s.Cart()

	next, err := fn(ctx, current.Clone())
	if err != nil {
		return current, &OpError{Op: op, ProductID: productID, Err: err}
	}

	data, err := domain.EncodeCart(next)
	if err != nil {
		return current, &OpError{Op: op, ProductID: productID, Err: fmt.Errorf("domain.EncodeCart: %w", err)}
	}

	if err := s.storage.Save(ctx, data); err != nil {
		return current, &OpError{Op: op, ProductID: productID, Err: fmt.Errorf("storage.Save: %w", err)}
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()

	log.WithField("items", next.Len()).Debug("cart updated")

	return next.Clone(), nil
}

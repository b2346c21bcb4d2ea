package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartstore-demo/internal/cart"
	"github.com/nikolayk812/cartstore-demo/internal/catalog"
	"github.com/nikolayk812/cartstore-demo/internal/config"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/logger"
	"github.com/nikolayk812/cartstore-demo/internal/notify"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"github.com/nikolayk812/cartstore-demo/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type runner struct {
	out    io.Writer
	errOut io.Writer

	cfg config.Config
	log *logrus.Logger
	tp  *sdktrace.TracerProvider
}

func newApp(out, errOut io.Writer) *cli.App {
	r := &runner{out: out, errOut: errOut}

	return &cli.App{
		Name:      "cart",
		Usage:     "manage the storefront shopping cart",
		Writer:    out,
		ErrWriter: errOut,
		// exit codes are resolved in main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "trace", Usage: "print cart operation spans"},
		},
		Before: r.before,
		After:  r.after,
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the cart",
				Action: r.show,
			},
			{
				Name:      "add",
				Usage:     "add one unit of a product",
				ArgsUsage: "PRODUCT_ID",
				Action:    r.add,
			},
			{
				Name:      "remove",
				Usage:     "remove a product",
				ArgsUsage: "PRODUCT_ID",
				Action:    r.remove,
			},
			{
				Name:      "update",
				Usage:     "set the amount of a product in the cart",
				ArgsUsage: "PRODUCT_ID AMOUNT",
				Action:    r.update,
			},
			{
				Name:   "total",
				Usage:  "print the cart total",
				Action: r.total,
			},
			{
				Name:  "serve-api",
				Usage: "serve products and stock from a json file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Value: "server.json", Usage: "json-server style document"},
					&cli.StringFlag{Name: "addr", Value: ":3333"},
				},
				Action: r.serveAPI,
			},
			{
				Name:   "migrate",
				Usage:  "apply postgres migrations",
				Action: r.migrate,
			},
		},
	}
}

func (r *runner) before(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cfg.Validate: %w", err)
	}
	r.cfg = cfg

	r.log = logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: r.errOut})

	if c.Bool("trace") {
		r.tp, err = initTracerProvider(r.errOut)
		if err != nil {
			return fmt.Errorf("initTracerProvider: %w", err)
		}
	}

	return nil
}

func (r *runner) after(c *cli.Context) error {
	if r.tp == nil {
		return nil
	}

	if err := r.tp.Shutdown(c.Context); err != nil {
		return fmt.Errorf("tp.Shutdown: %w", err)
	}

	return nil
}

func initTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("stdouttrace.New: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "cart"))),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

// openStore wires the configured storage backend, the catalog client and the
// log notifier. The returned func releases backend connections.
func (r *runner) openStore(ctx context.Context) (*cart.Store, func(), error) {
	storage, closeFn, err := r.openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	client, err := catalog.NewClient(r.cfg.APIURL, r.cfg.HTTPTimeout)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("catalog.NewClient: %w", err)
	}

	store, err := cart.NewStore(ctx, storage, client, notify.NewLog(r.log), cart.WithLogger(r.log))
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("cart.NewStore: %w", err)
	}

	return store, closeFn, nil
}

func (r *runner) openStorage(ctx context.Context) (port.CartStorage, func(), error) {
	key := r.cfg.CartKey()

	switch r.cfg.Storage {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, r.cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}

		storage, err := repository.NewPostgresStorage(pool, key)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repository.NewPostgresStorage: %w", err)
		}

		return storage, pool.Close, nil

	case config.StorageRedis:
		client, err := repository.NewRedisClient(ctx, r.cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.NewRedisClient: %w", err)
		}

		storage, err := repository.NewRedisStorage(client, key)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("repository.NewRedisStorage: %w", err)
		}

		return storage, func() { _ = client.Close() }, nil

	default:
		storage, err := repository.NewFileStorage(r.cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.NewFileStorage: %w", err)
		}

		return storage, func() {}, nil
	}
}

func (r *runner) show(c *cli.Context) error {
	store, closeFn, err := r.openStore(c.Context)
	if err != nil {
		return err
	}
	defer closeFn()

	return r.printCart(store.Cart())
}

func (r *runner) add(c *cli.Context) error {
	productID, err := productIDArg(c)
	if err != nil {
		return err
	}

	return r.mutate(c, func(ctx context.Context, store *cart.Store) (domain.Cart, error) {
		return store.AddProduct(ctx, productID)
	})
}

func (r *runner) remove(c *cli.Context) error {
	productID, err := productIDArg(c)
	if err != nil {
		return err
	}

	return r.mutate(c, func(ctx context.Context, store *cart.Store) (domain.Cart, error) {
		return store.RemoveProduct(ctx, productID)
	})
}

func (r *runner) update(c *cli.Context) error {
	productID, err := productIDArg(c)
	if err != nil {
		return err
	}

	amount, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("amount[%s] is not a number", c.Args().Get(1)), 2)
	}

	return r.mutate(c, func(ctx context.Context, store *cart.Store) (domain.Cart, error) {
		return store.UpdateProductAmount(ctx, cart.UpdateProductAmount{ProductID: productID, Amount: amount})
	})
}

func (r *runner) mutate(c *cli.Context, fn func(ctx context.Context, store *cart.Store) (domain.Cart, error)) error {
	store, closeFn, err := r.openStore(c.Context)
	if err != nil {
		return err
	}
	defer closeFn()

	updated, err := fn(c.Context, store)

	if printErr := r.printCart(updated); printErr != nil {
		return printErr
	}

	var opErr *cart.OpError
	if errors.As(err, &opErr) {
		// already reported by the notifier
		return cli.Exit("", 1)
	}

	return err
}

func (r *runner) total(c *cli.Context) error {
	store, closeFn, err := r.openStore(c.Context)
	if err != nil {
		return err
	}
	defer closeFn()

	unit, err := r.cfg.CurrencyUnit()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(r.out, store.Cart().Total(unit).String())
	return err
}

func (r *runner) printCart(c domain.Cart) error {
	unit, err := r.cfg.CurrencyUnit()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)

	for _, item := range c.Items {
		subtotal := domain.Money{Amount: c.Subtotal(item.ID), Currency: unit}
		fmt.Fprintf(tw, "#%d\t%s\tx%d\t%s\n", item.ID, item.Title, item.Amount, subtotal)
	}
	fmt.Fprintf(tw, "%d product(s)\t\t\t%s\n", c.Len(), c.Total(unit))

	return tw.Flush()
}

func (r *runner) serveAPI(c *cli.Context) error {
	db, err := catalog.LoadDB(c.String("db"))
	if err != nil {
		return fmt.Errorf("catalog.LoadDB: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           catalog.NewServer(db, r.log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.log.WithField("addr", srv.Addr).Info("serving products and stock")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	return nil
}

func (r *runner) migrate(_ *cli.Context) error {
	if r.cfg.Storage != config.StoragePostgres {
		return cli.Exit("migrate requires CART_STORAGE=postgres", 2)
	}

	if err := repository.Migrate(r.cfg.PostgresDSN); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}

	r.log.Info("migrations applied")
	return nil
}

func productIDArg(c *cli.Context) (int64, error) {
	raw := c.Args().First()

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("product id[%s] is not a number", raw), 2)
	}

	return id, nil
}

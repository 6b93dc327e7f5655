package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scvi-aria/deko/internal/display"
	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
	"github.com/scvi-aria/deko/internal/metrics"
	"github.com/scvi-aria/deko/internal/shell"
	"github.com/scvi-aria/deko/internal/source"
	"github.com/scvi-aria/deko/internal/store"
	"github.com/scvi-aria/deko/internal/vendor"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	VendorFile string
	PGDSN      string
	PGSetup    bool
	AMQPURL    string
	AMQPQueue  string
	Database   string
	Addr       string
	FPS        int
	Width      float64
	Height     float64

	// RunIDs allows overriding the journal run ID generator (for testing).
	// If nil, defaults to store.UUIDv7.
	RunIDs store.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the order display",
		Long: `Run the order display until interrupted.

Vendor configuration comes from --vendor-file (CUE), else the vendor_config
table when --pg-dsn is set, else built-in defaults. Orders arrive from any
combination of:
  - HTTP: POST /orders and POST /orders/test on --addr
  - Postgres: LISTEN on order_log inserts (--pg-dsn)
  - RabbitMQ: a durable queue (--amqp-url, --amqp-queue)

The display is pushed to browsers over GET /ws. Prometheus metrics are served
on GET /metrics. With --db every admission, drop and stage change is
journaled to SQLite for 'deko replay'.

Example:
  deko run --vendor-file ./vendor.cue --db ./deko.db
  deko run --pg-dsn postgres://localhost/shop --pg-setup --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.VendorFile, "vendor-file", "", "CUE vendor configuration file or directory")
	cmd.Flags().StringVar(&opts.PGDSN, "pg-dsn", os.Getenv("DEKO_PG_DSN"), "Postgres DSN for vendor_config and order_log notifications")
	cmd.Flags().BoolVar(&opts.PGSetup, "pg-setup", false, "install the order_log notify trigger before listening")
	cmd.Flags().StringVar(&opts.AMQPURL, "amqp-url", os.Getenv("DEKO_AMQP_URL"), "RabbitMQ URL to consume orders from")
	cmd.Flags().StringVar(&opts.AMQPQueue, "amqp-queue", source.DefaultQueue, "RabbitMQ queue name")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().IntVar(&opts.FPS, "fps", display.DefaultFPS, "frames per second")
	cmd.Flags().Float64Var(&opts.Width, "width", domain.DefaultSize.Width, "surface width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", domain.DefaultSize.Height, "surface height in pixels")

	return cmd
}

func runDisplay(opts *RunOptions, cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	var pool *pgxpool.Pool
	if opts.PGDSN != "" {
		p, err := source.NewPool(ctx, opts.PGDSN)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to connect to postgres", err)
		}
		defer p.Close()
		pool = p
		logger.Info("postgres connected")
	}

	cfg, err := loadVendor(ctx, opts.VendorFile, pool)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load vendor configuration", err)
	}
	tpl := cfg.Template()
	logger.Info("vendor configured",
		"vendor", cfg.VendorType,
		"template", tpl.Name(),
		"shop", cfg.ShopName,
	)

	hub := shell.NewHub(logger)
	m := metrics.New(cfg.VendorType)

	engineOpts := []engine.Option{
		engine.WithSize(domain.Size{Width: opts.Width, Height: opts.Height}),
		engine.WithBranding(cfg.Branding()),
		engine.WithLogger(logger),
		engine.WithObserver(hub),
		engine.WithObserver(m),
		engine.WithStateChange(func(stage domain.Stage, label string) {
			logger.Info("display", "stage", stage, "status", shell.StatusText(stage, label))
		}),
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		ids := opts.RunIDs
		if ids == nil {
			ids = store.UUIDv7{}
		}
		// Journal writes continue through shutdown.
		journal, err := store.StartJournal(context.WithoutCancel(ctx), st, ids, cfg.VendorType, tpl.Name(), time.Now(), logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal", err)
		}
		defer func() {
			if err := journal.Finish(context.Background(), time.Now()); err != nil {
				logger.Error("error finishing journal", "error", err)
			}
		}()
		engineOpts = append(engineOpts, engine.WithObserver(journal))
	}

	eng, err := engine.New(tpl, hub, engineOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create display engine", err)
	}
	driver := display.New(eng, display.WithFPS(opts.FPS), display.WithLogger(logger))

	sources, err := buildSources(ctx, opts, pool, logger)
	if err != nil {
		driver.Destroy()
		return WrapExitError(ExitCommandError, "failed to set up order sources", err)
	}

	server := shell.NewServer(shell.Config{
		Display: driver,
		Hub:     hub,
		Metrics: m.Handler(),
		Logger:  logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return driver.Run(gctx) })
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return server.ListenAndServe(gctx, opts.Addr) })
	for _, src := range sources {
		src := src
		g.Go(func() error {
			logger.Info("order source started", "source", src.Name())
			if err := src.Run(gctx, driver); err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Display running on %s (%s). Press Ctrl-C to stop.\n", opts.Addr, tpl.Name())

	err = g.Wait()
	driver.Destroy()
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "display error", err)
	}

	logger.Info("display stopped gracefully")
	return nil
}

// loadVendor resolves the vendor configuration: CUE file first, then the
// vendor_config table, then defaults.
func loadVendor(ctx context.Context, file string, pool *pgxpool.Pool) (vendor.Config, error) {
	switch {
	case file != "":
		return vendor.LoadFile(file)
	case pool != nil:
		return vendor.LoadPostgres(ctx, pool)
	default:
		return vendor.Default(), nil
	}
}

func buildSources(ctx context.Context, opts *RunOptions, pool *pgxpool.Pool, logger *slog.Logger) ([]source.Source, error) {
	var sources []source.Source
	if pool != nil {
		pg := source.NewPostgres(pool, source.DefaultChannel, logger)
		if opts.PGSetup {
			if err := pg.Setup(ctx); err != nil {
				return nil, err
			}
		}
		sources = append(sources, pg)
	}
	if opts.AMQPURL != "" {
		sources = append(sources, source.NewAMQP(source.AMQPConfig{
			URL:   opts.AMQPURL,
			Queue: opts.AMQPQueue,
		}, logger))
	}
	return sources, nil
}

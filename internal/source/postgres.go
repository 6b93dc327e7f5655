package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultChannel is the NOTIFY channel the order_log trigger publishes on.
const DefaultChannel = "order_log_inserts"

// NotifyTrigger installs a trigger that publishes every order_log insert as
// JSON on DefaultChannel. Applied by Postgres.Setup.
const NotifyTrigger = `
CREATE OR REPLACE FUNCTION deko_notify_order() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('` + DefaultChannel + `', row_to_json(NEW)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS deko_order_log_notify ON order_log;
CREATE TRIGGER deko_order_log_notify
	AFTER INSERT ON order_log
	FOR EACH ROW EXECUTE FUNCTION deko_notify_order();
`

// Postgres listens for order_log inserts via LISTEN/NOTIFY.
type Postgres struct {
	pool    *pgxpool.Pool
	channel string
	logger  *slog.Logger
}

// NewPostgres creates a Postgres source on pool.
func NewPostgres(pool *pgxpool.Pool, channel string, logger *slog.Logger) *Postgres {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, channel: channel, logger: logger}
}

func (p *Postgres) Name() string { return "postgres:" + p.channel }

// Setup installs the notify trigger on order_log.
func (p *Postgres) Setup(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, NotifyTrigger); err != nil {
		return fmt.Errorf("install order_log trigger: %w", err)
	}
	return nil
}

// Run holds one pooled connection in LISTEN until ctx is done, reacquiring it
// after connection loss.
func (p *Postgres) Run(ctx context.Context, sink Sink) error {
	for {
		err := p.listen(ctx, sink)
		if ctx.Err() != nil {
			return nil
		}
		p.logger.Warn("postgres listener lost, retrying", "channel", p.channel, "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (p *Postgres) listen(ctx context.Context, sink Sink) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{p.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	p.logger.Info("postgres listener started", "channel", p.channel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		order, err := Decode([]byte(n.Payload))
		if err != nil {
			p.logger.Error("skipping order notification", "channel", p.channel, "error", err)
			continue
		}
		p.logger.Debug("received order", "channel", p.channel, "order", order.Number)
		sink.RunOrder(order)
	}
}

// NewPool opens a pgx pool and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the queue the display consumes when none is configured.
const DefaultQueue = "deko.orders"

// AMQPConfig configures an AMQP source.
type AMQPConfig struct {
	URL      string
	Queue    string
	Prefetch int

	// MaxBackoff caps the reconnect delay. Defaults to 30s.
	MaxBackoff time.Duration
}

// AMQP consumes order messages from a RabbitMQ queue.
//
// Malformed messages are rejected without requeue (dead-lettered when the
// queue has a DLX); well-formed ones are acked once handed to the sink. A
// dropped connection is redialled with exponential backoff.
type AMQP struct {
	cfg    AMQPConfig
	logger *slog.Logger
	dial   func(url string) (*amqp.Connection, error)
}

// NewAMQP creates an AMQP source. The connection is opened by Run.
func NewAMQP(cfg AMQPConfig, logger *slog.Logger) *AMQP {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQP{cfg: cfg, logger: logger, dial: amqp.Dial}
}

func (a *AMQP) Name() string { return "amqp:" + a.cfg.Queue }

// Run consumes until ctx is done. It returns nil on cancellation.
func (a *AMQP) Run(ctx context.Context, sink Sink) error {
	delay := time.Second
	for {
		err := a.session(ctx, sink)
		if ctx.Err() != nil {
			return nil
		}
		a.logger.Warn("amqp session ended, reconnecting",
			"queue", a.cfg.Queue,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, a.cfg.MaxBackoff)
	}
}

// session dials, declares the queue and consumes until the connection or ctx
// closes.
func (a *AMQP) session(ctx context.Context, sink Sink) error {
	conn, err := a.dial(a.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		a.cfg.Queue, // name
		true,        // durable
		false,       // auto-delete
		false,       // exclusive
		false,       // no-wait
		nil,         // args
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(a.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		a.cfg.Queue, // queue
		"",          // consumer tag (auto-generated)
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	a.logger.Info("amqp consumer started", "queue", a.cfg.Queue)
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			a.handle(d, sink)
		}
	}
}

// acknowledger is the subset of amqp.Delivery handle needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (a *AMQP) handle(d amqp.Delivery, sink Sink) {
	handleMessage(a.logger, a.cfg.Queue, d.Body, &d, sink)
}

func handleMessage(logger *slog.Logger, queue string, body []byte, ack acknowledger, sink Sink) {
	order, err := Decode(body)
	if err != nil {
		logger.Error("rejecting order message",
			"queue", queue,
			"error", err,
			"body", string(body),
		)
		if nackErr := ack.Nack(false, false); nackErr != nil {
			logger.Warn("nack failed", "error", nackErr)
		}
		return
	}

	logger.Debug("received order", "queue", queue, "order", order.Number)
	sink.RunOrder(order)
	if err := ack.Ack(false); err != nil {
		logger.Warn("ack failed", "order", order.Number, "error", err)
	}
}

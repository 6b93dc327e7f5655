package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
	"github.com/scvi-aria/deko/internal/source"
)

// Version is reported by /healthz.
const Version = "0.1.0"

// maxBody bounds POSTed order payloads.
const maxBody = 64 << 10

// Display is what the HTTP API needs from the running display.
// display.Driver satisfies it.
type Display interface {
	source.Sink
	Snapshot() engine.Snapshot
}

// Config wires a Server.
type Config struct {
	Display Display
	Hub     *Hub
	Metrics http.Handler
	Logger  *slog.Logger

	// Now stamps test orders and health replies. Defaults to time.Now.
	Now func() time.Time
}

// Server exposes the display over HTTP.
type Server struct {
	display Display
	hub     *Hub
	metrics http.Handler
	logger  *slog.Logger
	now     func() time.Time
}

// NewServer creates a server from cfg.
func NewServer(cfg Config) *Server {
	s := &Server{
		display: cfg.Display,
		hub:     cfg.Hub,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	chain := Chain(Recovery(s.logger), Logging(s.logger))

	mux.Handle("GET /healthz", http.HandlerFunc(s.health))
	mux.Handle("GET /state", chain(http.HandlerFunc(s.state)))
	mux.Handle("POST /orders", chain(http.HandlerFunc(s.createOrder)))
	mux.Handle("POST /orders/test", chain(http.HandlerFunc(s.createTestOrder)))
	if s.hub != nil {
		// no logging wrapper: the upgrade needs the raw ResponseWriter
		mux.Handle("GET /ws", Recovery(s.logger)(http.HandlerFunc(s.hub.ServeWS)))
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   "deko",
		Version:   Version,
		Timestamp: s.now().UTC(),
	})
}

type stateResponse struct {
	engine.Snapshot
	Status string `json:"status"`
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	snap := s.display.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Snapshot: snap,
		Status:   StatusText(snap.Stage, snap.Label),
	})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := source.Decode(body)
	if errors.Is(err, source.ErrMissingOrderNumber) {
		writeError(w, http.StatusBadRequest, "order_number is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.display.RunOrder(order)
	writeJSON(w, http.StatusAccepted, order)
}

type testOrderResponse struct {
	OK    bool         `json:"ok"`
	Order domain.Order `json:"order"`
}

func (s *Server) createTestOrder(w http.ResponseWriter, r *http.Request) {
	order := TestOrder(s.now())
	s.display.RunOrder(order)
	writeJSON(w, http.StatusOK, testOrderResponse{OK: true, Order: order})
}

// TestOrder builds the demo order for instant now: TEST-<unix millis in
// upper-case base 36>.
func TestOrder(now time.Time) domain.Order {
	id := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return domain.Order{
		Number: "TEST-" + id,
		Items:  []string{"Test Latte", "Test Croissant"},
	}
}

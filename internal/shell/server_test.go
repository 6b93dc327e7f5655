package shell

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
)

type fakeDisplay struct {
	mu     sync.Mutex
	orders []domain.Order
	snap   engine.Snapshot
}

func (f *fakeDisplay) RunOrder(o domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
}

func (f *fakeDisplay) Snapshot() engine.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = time.UnixMilli(1700000000000)

func newTestServer(t *testing.T, display Display) *httptest.Server {
	t.Helper()
	s := NewServer(Config{
		Display: display,
		Logger:  quiet,
		Now:     func() time.Time { return fixedNow },
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeDisplay{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "deko", body.Service)
	assert.Equal(t, Version, body.Version)
}

func TestCreateOrder(t *testing.T) {
	display := &fakeDisplay{}
	srv := newTestServer(t, display)

	resp, err := http.Post(srv.URL+"/orders", "application/json",
		strings.NewReader(`{"order_number":"001","items":["Latte",{"name":"Croissant"}]}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, display.orders, 1)
	assert.Equal(t, domain.Order{Number: "001", Items: []string{"Latte", "Croissant"}}, display.orders[0])
}

func TestCreateOrder_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing order number", `{"items":["Latte"]}`, "order_number is required"},
		{"empty order number", `{"order_number":""}`, "order_number is required"},
		{"not json", `latte please`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := &fakeDisplay{}
			srv := newTestServer(t, display)

			resp, err := http.Post(srv.URL+"/orders", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, body.Error)
			assert.Empty(t, display.orders)
		})
	}
}

func TestCreateOrder_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeDisplay{})

	resp, err := http.Get(srv.URL + "/orders")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCreateTestOrder(t *testing.T) {
	display := &fakeDisplay{}
	srv := newTestServer(t, display)

	resp, err := http.Post(srv.URL+"/orders/test", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body testOrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.OK)
	assert.Equal(t, "TEST-LOYW3V28", body.Order.Number)
	assert.Equal(t, []string{"Test Latte", "Test Croissant"}, body.Order.Items)
	require.Len(t, display.orders, 1)
	assert.Equal(t, body.Order, display.orders[0])
}

func TestState(t *testing.T) {
	display := &fakeDisplay{snap: engine.Snapshot{
		Vendor:  "Coffee Shop",
		Stage:   domain.StageIdle,
		Label:   "Waiting for orders...",
		Pending: []domain.Order{},
	}}
	srv := newTestServer(t, display)

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "IDLE", body["stage"])
	assert.Equal(t, IdleStatus, body["status"])
	assert.Equal(t, "Coffee Shop", body["vendor"])
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Scan to order", StatusText(domain.StageIdle, "Waiting for orders..."))
	assert.Equal(t, "Brewing your coffee...", StatusText(domain.StagePreparing, "Brewing your coffee..."))
}

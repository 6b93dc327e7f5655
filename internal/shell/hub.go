package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// displays are kiosks on the shop LAN; any origin may attach
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope every websocket frame carries.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StateMessage announces a stage change to the UI shell.
type StateMessage struct {
	Seq     int64         `json:"seq"`
	Stage   domain.Stage  `json:"stage"`
	Label   string        `json:"label"`
	Status  string        `json:"status"`
	Order   *domain.Order `json:"order,omitempty"`
	Pending int           `json:"pending"`
}

// QueueMessage reports an admission or drop.
type QueueMessage struct {
	Seq     int64        `json:"seq"`
	Order   domain.Order `json:"order"`
	Dropped bool         `json:"dropped"`
	Pending int          `json:"pending"`
}

// Hub fans engine output out to websocket clients.
//
// It is both the engine's Surface (frames) and an engine.Observer (state and
// queue events). Identical consecutive frames are not re-sent: templates only
// change every 125ms while the engine presents at the display rate. Clients
// that fall behind lose messages rather than slow the engine down.
type Hub struct {
	logger *slog.Logger

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu        sync.Mutex
	size      domain.Size
	lastKey   []byte
	lastFrame []byte
	lastState []byte
	frames    int
	skipped   int
	connected atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub. Call Run to start fan-out.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx is done or the hub
// is closed.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		h.Close()
		h.disconnectAll()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))
			h.mu.Lock()
			greeting := [][]byte{h.lastState, h.lastFrame}
			h.mu.Unlock()
			for _, msg := range greeting {
				if msg != nil {
					c.offer(msg)
				}
			}
			h.logger.Debug("display client connected", "remote", c.remote, "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.connected.Store(int64(len(h.clients)))
				h.logger.Debug("display client disconnected", "remote", c.remote, "clients", len(h.clients))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.offer(msg) {
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("dropping slow display client", "remote", c.remote)
				}
			}
			h.connected.Store(int64(len(h.clients)))
		}
	}
}

func (h *Hub) disconnectAll() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.connected.Store(0)
}

// Clients returns the number of connected displays.
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Open implements engine.Surface.
func (h *Hub) Open(size domain.Size) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.size = size
	return nil
}

// Present implements engine.Surface. It never blocks the engine.
func (h *Hub) Present(f canvas.Frame) error {
	// elapsed moves every frame; only the stage and the picture decide
	// whether anything changed
	key, err := json.Marshal(struct {
		Stage  domain.Stage   `json:"stage"`
		Shapes []canvas.Shape `json:"shapes"`
	}{f.Stage, f.Shapes})
	if err != nil {
		return err
	}
	h.mu.Lock()
	if bytes.Equal(key, h.lastKey) {
		h.skipped++
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	msg, err := json.Marshal(Message{Type: "frame", Data: f})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.lastKey = key
	h.lastFrame = msg
	h.frames++
	h.mu.Unlock()

	h.publish(msg)
	return nil
}

// Close implements engine.Surface. It stops fan-out and disconnects every
// client. Idempotent.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

func (h *Hub) OnTransition(t engine.Transition) {
	msg, err := json.Marshal(Message{Type: "state", Data: StateMessage{
		Seq:     t.Seq,
		Stage:   t.To,
		Label:   t.Label,
		Status:  StatusText(t.To, t.Label),
		Order:   t.Order,
		Pending: t.Pending,
	}})
	if err != nil {
		h.logger.Error("encode state message", "error", err)
		return
	}
	h.mu.Lock()
	h.lastState = msg
	h.mu.Unlock()
	h.publish(msg)
}

func (h *Hub) OnAdmit(a engine.Admit) {
	h.publishQueue(QueueMessage{Seq: a.Seq, Order: a.Order, Pending: a.Pending})
}

func (h *Hub) OnDrop(d engine.Drop) {
	h.publishQueue(QueueMessage{Seq: d.Seq, Order: d.Order, Dropped: true, Pending: d.Pending})
}

func (h *Hub) publishQueue(q QueueMessage) {
	msg, err := json.Marshal(Message{Type: "queue", Data: q})
	if err != nil {
		h.logger.Error("encode queue message", "error", err)
		return
	}
	h.publish(msg)
}

func (h *Hub) publish(msg []byte) {
	select {
	case <-h.done:
	case h.broadcast <- msg:
	default:
		h.logger.Debug("hub backlog full, message dropped")
	}
}

// Stats reports frames sent and identical frames skipped.
func (h *Hub) Stats() (sent, skipped int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames, h.skipped
}

// ServeWS upgrades the request and attaches the connection as a client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), remote: r.RemoteAddr}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Client is one connected display.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// offer queues msg without blocking. It reports false when the client's
// buffer is full.
func (c *Client) offer(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// writePump moves messages from send to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; it exists to process pongs and notice
// disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

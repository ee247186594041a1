package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxClientBytes = 4 << 10
	clientBuffer   = 64
)

// ProgressHub fans batch progress events out to websocket clients.
// Slow clients lose events rather than blocking the batch.
type ProgressHub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*progressClient]struct{}
	closed  bool
}

type progressClient struct {
	conn *websocket.Conn
	send chan domain.ProgressEvent
	once sync.Once
}

func (c *progressClient) stop() {
	c.once.Do(func() { close(c.send) })
}

// NewProgressHub creates a hub. A nil log discards.
func NewProgressHub(log *slog.Logger) *ProgressHub {
	if log == nil {
		log = logger.Discard()
	}
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*progressClient]struct{}),
	}
}

// Publish queues ev for every connected client. It never blocks.
func (h *ProgressHub) Publish(ev domain.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.log.Warn("progress client lagging, event dropped", "file", ev.Filename)
		}
	}
}

// Clients returns the number of connected clients.
func (h *ProgressHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.stop()
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *ProgressHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &progressClient{conn: conn, send: make(chan domain.ProgressEvent, clientBuffer)}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		conn.Close() //nolint:errcheck,gosec
		return
	}
	h.log.Debug("progress client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *ProgressHub) register(c *progressClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *ProgressHub) unregister(c *progressClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

// readLoop discards client messages and detects disconnects.
func (h *ProgressHub) readLoop(c *progressClient) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxClientBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("progress client read error", "error", err)
			}
			return
		}
	}
}

// writeLoop owns all writes to the connection.
func (h *ProgressHub) writeLoop(c *progressClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

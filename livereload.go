package pubsite

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// liveReloadHub tells connected preview pages to reload after a rebuild.
type liveReloadHub struct {
	logger  *slog.Logger
	mu      sync.Mutex
	nextID  int
	clients map[int]*websocket.Conn
	closed  bool
}

func newLiveReloadHub(logger *slog.Logger) *liveReloadHub {
	return &liveReloadHub{logger: logger, clients: map[int]*websocket.Conn{}}
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away or the hub shuts down.
func (h *liveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("livereload upgrade", "error", err)
		return
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.clients[id] = conn
	h.mu.Unlock()

	// Clients never send; CloseRead handles control frames and reports
	// the disconnect.
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()
	h.remove(id)
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *liveReloadHub) remove(id int) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// Clients returns the number of connected pages.
func (h *liveReloadHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends a reload message to every connected page. Clients that
// cannot be written to are dropped.
func (h *liveReloadHub) Broadcast(ctx context.Context) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	snapshot := make(map[int]*websocket.Conn, len(h.clients))
	for id, c := range h.clients {
		snapshot[id] = c
	}
	h.mu.Unlock()

	msg := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	dropped := 0
	for id, c := range snapshot {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.Write(writeCtx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			dropped++
			h.remove(id)
			c.Close(websocket.StatusGoingAway, "write failed")
		}
	}
	h.logger.Debug("livereload broadcast", "clients", len(snapshot), "dropped", dropped)
}

// Shutdown closes all clients and prevents future broadcasts.
func (h *liveReloadHub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*websocket.Conn{}
	h.mu.Unlock()
	for _, c := range clients {
		c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

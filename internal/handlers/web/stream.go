// file: internal/handlers/web/stream.go
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"campusvoice/internal/contextutils"
	"campusvoice/internal/events"
	"campusvoice/internal/models"
	"campusvoice/internal/services"
	"campusvoice/internal/view"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust for production
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// streamClient is one connected listing subscriber.
type streamClient struct {
	conn    *websocket.Conn
	refresh chan struct{}
}

// StreamHandler pushes fresh listing snapshots over a websocket
// whenever any suggestion changes. Clients send their filter criteria
// as query parameters at connect time.
type StreamHandler struct {
	suggestions services.SuggestionService
	bus         events.EventBus
	logger      *zap.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

// NewStreamHandler creates the handler and subscribes it to all
// suggestion events.
func NewStreamHandler(suggestions services.SuggestionService, bus events.EventBus, logger *zap.Logger) (*StreamHandler, error) {
	h := &StreamHandler{
		suggestions: suggestions,
		bus:         bus,
		logger:      logger,
		clients:     make(map[*streamClient]struct{}),
	}

	handler := events.NewEventHandlerFunc("listing-stream", func(ctx context.Context, event events.Event) error {
		h.notifyAll()
		return nil
	})
	if err := bus.SubscribePattern("suggestion.*", handler); err != nil {
		return nil, err
	}
	return h, nil
}

// ServeHTTP upgrades the connection and streams listing snapshots. An
// initial snapshot is sent immediately after upgrade.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	criteria := view.Criteria{
		Search:    r.URL.Query().Get("search"),
		Tag:       r.URL.Query().Get("tag"),
		Category:  r.URL.Query().Get("category"),
		SortOrder: r.URL.Query().Get("sort"),
	}
	viewer := contextutils.GetViewer(r.Context())

	// Reject bad criteria before the upgrade so the client gets a plain
	// HTTP error instead of a socket that never delivers a snapshot.
	if criteria.SortOrder != "" && !view.ValidateSortOrder(criteria.SortOrder) {
		http.Error(w, "unknown sort order", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &streamClient{
		conn: conn,
		// Buffer of one collapses bursts into a single refresh.
		refresh: make(chan struct{}, 1),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Listing stream client connected", zap.String("remote", r.RemoteAddr))

	go h.writeLoop(client, viewer, criteria)
	h.readLoop(client)
}

func (h *StreamHandler) writeLoop(client *streamClient, viewer *models.UserProfile, criteria view.Criteria) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Initial snapshot.
	h.push(client, viewer, criteria)

	for {
		select {
		case _, ok := <-client.refresh:
			if !ok {
				return
			}
			h.push(client, viewer, criteria)
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) readLoop(client *streamClient) {
	defer h.drop(client)

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) push(client *streamClient, viewer *models.UserProfile, criteria view.Criteria) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listing, err := h.suggestions.ListView(ctx, viewer, criteria)
	if err != nil {
		h.logger.Warn("Failed to build listing snapshot for stream", zap.Error(err))
		return
	}

	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.conn.WriteJSON(listing); err != nil {
		h.logger.Debug("Listing stream write failed", zap.Error(err))
	}
}

func (h *StreamHandler) notifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.refresh <- struct{}{}:
		default:
		}
	}
}

func (h *StreamHandler) drop(client *streamClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.refresh)
	}
	h.mu.Unlock()
	client.conn.Close()
	h.logger.Debug("Listing stream client disconnected")
}

// Package ws pushes booking events to live dashboards over websockets.
package ws

import (
	"encoding/json"
	"net/http"
	"roombook/config"
	"roombook/infras/metrics"
	"roombook/shared/constant"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// roomScoped is implemented by values that belong to a single room.
type roomScoped interface {
	Room() string
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	roomID string
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
}

func NewHub(cfg *config.Config, metrics *metrics.Metrics) *Hub {
	origins := cfg.App.CORS.AllowedOrigins

	return &Hub{
		clients: make(map[*client]struct{}),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || !cfg.App.CORS.Enable || len(origins) == 0 || slices.Contains(origins, constant.Asterix) {
					return true
				}

				return slices.Contains(origins, origin)
			},
		},
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Broadcast sends v as JSON to every client. Slow clients miss the message instead of blocking the rest.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode live event")

		return
	}

	room := ""
	if scoped, ok := v.(roomScoped); ok {
		room = scoped.Room()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.roomID != "" && c.roomID != room {
			continue
		}

		select {
		case c.send <- data:
		default:
			log.Warn().Msg("live client too slow, dropping event")
		}
	}
}

// ServeHTTP upgrades the request. An optional room_id query narrows the feed to one room.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")

		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		roomID: strings.TrimSpace(r.URL.Query().Get(constant.RequestParamRoomID)),
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		h.metrics.LiveClientDisconnected()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	h.metrics.LiveClientConnected()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.LiveClientDisconnected()
	}
}

// readPump only drains control frames; the feed is one way.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("live client closed unexpectedly")
			}

			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

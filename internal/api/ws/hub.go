package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"swapchess/internal/config"
	"swapchess/internal/msgcat"
	"swapchess/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrShuttingDown = errors.New("hub is shutting down")

// Hub tracks live connections and which room each one listens to. It
// implements room.Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]struct{}
	closing bool

	roomManager RoomManager
	msgs        *msgcat.Catalog
	cfg         config.WSConfig
	log         *zap.Logger
	upgrader    websocket.Upgrader
	wg          sync.WaitGroup
}

func NewHub(roomManager RoomManager, cfg config.Config, msgs *msgcat.Catalog, log *zap.Logger) *Hub {
	if msgs == nil {
		msgs = msgcat.MustDefault()
	}
	if log == nil {
		log = zap.NewNop()
	}
	origins := newOriginPolicy(cfg.AllowedOrigins)
	h := &Hub{
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]struct{}),
		roomManager: roomManager,
		msgs:        msgs,
		cfg:         cfg.WS,
		log:         log.Named("ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if origins.check(r) {
				return true
			}
			h.log.Warn("origin_rejected", zap.String("origin", r.Header.Get("Origin")))
			return false
		},
	}
	return h
}

// HandleWS upgrades the request and starts the connection pumps.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("upgrade_failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, h, c.ClientIP())
	if err := h.register(client); err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// register adds the client and counts its two pumps toward Shutdown's wait.
func (h *Hub) register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return ErrShuttingDown
	}
	h.wg.Add(2)
	h.clients[c.id] = c
	h.log.Info("client_connected", zap.String("conn", c.id), zap.String("addr", c.addr), zap.Int("clients", len(h.clients)))
	return nil
}

// unregister forgets the client and lets the session layer release its seat.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	for code, members := range h.rooms {
		if _, in := members[c.id]; in {
			delete(members, c.id)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	if !ok {
		return
	}
	h.roomManager.Disconnect(context.Background(), c.id)
	h.log.Info("client_disconnected", zap.String("conn", c.id), zap.Int("clients", n))
}

func (h *Hub) Subscribe(roomCode, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connID]; !ok {
		return
	}
	members, ok := h.rooms[roomCode]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[roomCode] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) Unsubscribe(roomCode, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomCode]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

// CloseRoom drops every subscription to the room. Connections stay open.
func (h *Hub) CloseRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomCode)
}

// Broadcast queues the event for every subscriber of the room except the
// listed connections. It never blocks on a slow reader.
func (h *Hub) Broadcast(roomCode string, event string, data any, except ...string) {
	payload, err := encode(event, data)
	if err != nil {
		h.log.Error("encode_failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	for connID := range members {
		if contains(except, connID) {
			continue
		}
		if c, ok := h.clients[connID]; ok {
			c.enqueue(payload)
		}
	}
}

func (h *Hub) Send(connID string, event string, data any) {
	payload, err := encode(event, data)
	if err != nil {
		h.log.Error("encode_failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if ok {
		c.enqueue(payload)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and waits for the pumps to exit or for
// ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(shared.Outbound{Event: event, Data: data})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

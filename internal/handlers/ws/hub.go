package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/notify"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
)

// ErrNotConnected is returned when the user has no live socket on this hub.
var ErrNotConnected = errors.New("user not connected")

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// ClientConnection wraps one socket of a user. A user may hold several.
type ClientConnection struct {
	Conn         Conn
	UserID       uuid.UUID
	SupportsGzip bool

	writeMu   sync.Mutex
	lastPong  atomic.Int64 // unix nanos
	closeOnce sync.Once
	closeChan chan struct{}
}

func (c *ClientConnection) touch() {
	c.lastPong.Store(time.Now().UnixNano())
}

func (c *ClientConnection) sinceLastPong() time.Duration {
	return time.Since(time.Unix(0, c.lastPong.Load()))
}

// WriteJSON marshals v and writes it, gzip-compressed when the client asked
// for it and the frame is large enough to benefit.
func (c *ClientConnection) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	frameType := websocket.TextMessage
	if c.SupportsGzip && len(data) > gzipThreshold {
		if compressed, err := compressData(data); err == nil && len(compressed) < len(data) {
			data = compressed
			frameType = websocket.BinaryMessage
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(frameType, data)
}

func (c *ClientConnection) stop() {
	c.closeOnce.Do(func() { close(c.closeChan) })
}

// Hub tracks the live sockets of this process and implements
// service.Notifier on top of them.
type Hub struct {
	clients    map[uuid.UUID]map[*ClientConnection]struct{}
	clientsMux sync.RWMutex

	pingInterval time.Duration
	pongTimeout  time.Duration
	log          zerolog.Logger
}

var _ service.Notifier = (*Hub)(nil)

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:      make(map[uuid.UUID]map[*ClientConnection]struct{}),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
		log:          log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run drops connections that stopped answering pings until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.removeDead()
		}
	}
}

func (h *Hub) removeDead() {
	h.clientsMux.RLock()
	dead := make([]*ClientConnection, 0)
	for _, conns := range h.clients {
		for c := range conns {
			if c.sinceLastPong() > h.pongTimeout {
				dead = append(dead, c)
			}
		}
	}
	h.clientsMux.RUnlock()

	for _, c := range dead {
		h.log.Info().Str("user_id", c.UserID.String()).Msg("removing dead connection (no pong received)")
		h.drop(c)
	}
}

// Register adds a socket for userID and starts pinging it.
func (h *Hub) Register(userID uuid.UUID, conn Conn, supportsGzip bool) *ClientConnection {
	client := &ClientConnection{
		Conn:         conn,
		UserID:       userID,
		SupportsGzip: supportsGzip,
		closeChan:    make(chan struct{}),
	}
	client.touch()

	conn.SetPongHandler(func(string) error {
		client.touch()
		return conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	})
	_ = conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[*ClientConnection]struct{})
		h.clients[userID] = conns
	}
	conns[client] = struct{}{}
	total := len(h.clients)
	h.clientsMux.Unlock()

	go h.pingRoutine(client)

	h.log.Debug().
		Str("user_id", userID.String()).
		Int("users", total).
		Bool("gzip", supportsGzip).
		Msg("connection registered")
	return client
}

// Unregister removes client and reports how many sockets the user still has.
func (h *Hub) Unregister(client *ClientConnection) int {
	client.stop()

	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return 0
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	return len(conns)
}

// drop unregisters client and closes its socket so the read loop exits.
func (h *Hub) drop(client *ClientConnection) {
	h.Unregister(client)
	_ = client.Conn.Close()
}

// IsConnected reports whether userID has a live socket on this hub.
func (h *Hub) IsConnected(userID uuid.UUID) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients[userID]) > 0
}

// Count returns the number of connected users.
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

func (h *Hub) connections(userID uuid.UUID) []*ClientConnection {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	out := make([]*ClientConnection, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}

// SendToUser writes v to every socket of userID. It succeeds when at least
// one socket took the frame; sockets that fail are dropped.
func (h *Hub) SendToUser(userID uuid.UUID, v interface{}) error {
	conns := h.connections(userID)
	if len(conns) == 0 {
		return ErrNotConnected
	}

	var lastErr error
	delivered := false
	for _, c := range conns {
		if err := c.WriteJSON(v); err != nil {
			h.log.Debug().Err(err).Str("user_id", userID.String()).Msg("write failed, dropping connection")
			h.drop(c)
			lastErr = err
			continue
		}
		delivered = true
	}
	if !delivered {
		return lastErr
	}
	return nil
}

func (h *Hub) DeliverMessage(_ context.Context, recipientID uuid.UUID, msg *models.Message) error {
	return h.SendToUser(recipientID, notify.MessageEvent(msg))
}

func (h *Hub) MessageUpdated(_ context.Context, recipientID uuid.UUID, msg *models.Message) error {
	return h.SendToUser(recipientID, notify.MessageUpdatedEvent(msg))
}

func (h *Hub) ReceiptUpdated(_ context.Context, senderID uuid.UUID, r *models.MessageReceipt) error {
	return h.SendToUser(senderID, notify.ReceiptEvent(r))
}

func (h *Hub) TypingChanged(_ context.Context, recipientID, chatID, typerID uuid.UUID, typing bool) error {
	return h.SendToUser(recipientID, notify.TypingEvent(chatID, typerID, typing))
}

func (h *Hub) pingRoutine(client *ClientConnection) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.closeChan:
			return
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				h.log.Debug().Err(err).Str("user_id", client.UserID.String()).Msg("ping failed")
				h.drop(client)
				return
			}
		}
	}
}

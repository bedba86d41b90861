package realtime

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client wraps one WebSocket connection for the lifetime of its intent.
type Client struct {
	id       string
	registry *Registry
	conn     *websocket.Conn
	send     chan []byte
	userID   uint
	intent   Intent

	ctx    context.Context
	cancel context.CancelFunc
	closed int32 // atomic flag, set once the client may no longer be written to
}

func NewClient(registry *Registry, conn *websocket.Conn, userID uint, intent Intent) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:       uuid.New().String(),
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		userID:   userID,
		intent:   intent,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() uint {
	return c.userID
}

func (c *Client) Intent() Intent {
	return c.intent
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client as closed and cancels its context. Safe to call
// from any goroutine, effective at most once.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		slog.Debug("Client marked as closed", "clientID", c.id, "userID", c.userID)
	}
}

// SendPayload enqueues a payload for delivery. It never blocks: a full send
// buffer means the peer stopped draining, so the client is marked closed and
// ErrClientDisconnected is returned for the caller to evict it.
func (c *Client) SendPayload(payload []byte) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.ctx.Done():
		return ErrClientDisconnected
	default:
		slog.Warn("Send buffer full, closing client", "clientID", c.id, "userID", c.userID)
		c.close()
		return ErrClientDisconnected
	}
}

func (c *Client) sendError(code, message string) {
	if err := c.SendPayload(newErrorPayload(code, message)); err != nil {
		slog.Debug("Dropping error payload for closed client", "clientID", c.id)
	}
}

// readPump pumps inbound frames from the connection. Chat subscribers get
// their frames handed to the relay; presence and notification connections
// have no inbound protocol, their frames are drained and discarded.
func (c *Client) readPump() {
	defer func() {
		c.close()
		c.registry.OnClose(c)
		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "clientID", c.id, "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "userID", c.userID, "error", err)
			}
			return
		}

		if c.intent.Kind != IntentChat {
			continue
		}

		c.registry.handleInbound(c, raw)
	}
}

// writePump serializes all outbound traffic for the connection and keeps the
// peer alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.Debug("Error writing message", "clientID", c.id, "userID", c.userID, "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Error sending ping", "clientID", c.id, "userID", c.userID, "error", err)
				c.close()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

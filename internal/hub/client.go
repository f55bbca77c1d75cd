// Package hub owns the WebSocket transport side of a connection: one read
// pump and one write pump per client, with ping/pong liveness handled by
// the underlying connection layer.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snigenigmatic/QuadChat/internal/config"
	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/pkg/log"
)

// Client is one live, authenticated connection for one identity.
type Client struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn
	send     chan []byte
	cfg      config.WebSocketConfig

	createdAt time.Time

	// closeOnce guarantees the disconnect path runs exactly once no matter
	// how many close signals the transport produces.
	closeOnce sync.Once
	done      chan struct{}
	onClose   func(*Client)
}

// NewClient wraps an upgraded connection. onClose fires exactly once when
// the connection goes away, whatever the cause.
func NewClient(id string, identity domain.Identity, conn *websocket.Conn, cfg config.WebSocketConfig, onClose func(*Client)) *Client {
	return &Client{
		id:        id,
		identity:  identity,
		conn:      conn,
		send:      make(chan []byte, 256),
		cfg:       cfg,
		createdAt: time.Now(),
		done:      make(chan struct{}),
		onClose:   onClose,
	}
}

// ID returns the transport-assigned connection ID.
func (c *Client) ID() string { return c.id }

// Identity returns the owning identity.
func (c *Client) Identity() domain.Identity { return c.identity }

// Push enqueues an event for delivery. Pushing to a closed client, or to
// one whose send buffer is full, drops the event silently: live push is a
// best-effort layer on top of persistence.
func (c *Client) Push(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		l := log.L()
		l.Warn().Str(log.FieldConnectionID, c.id).Msg("send buffer full, dropping event")
	}
	return nil
}

// ReadPump reads inbound events and hands each one to handler. Events of a
// single connection are handled sequentially, which is what preserves
// per-sender ordering downstream. Blocks until the connection dies.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer c.shutdown()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Debug().Err(err).Str(log.FieldConnectionID, c.id).Msg("websocket read error")
			}
			return
		}

		handler(c, message)
	}
}

// WritePump drains the send buffer to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Close tears the connection down from the server side.
func (c *Client) Close() {
	c.shutdown()
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		l := log.L()
		l.Debug().
			Str(log.FieldConnectionID, c.id).
			Dur("connected_for", time.Since(c.createdAt)).
			Msg("connection closed")
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// Transport glue between fiber websocket connections and the core. Each
// client gets a stable uuid identity and a buffered send channel; ReadPump
// feeds frames to the router and WritePump drains the channel, so the core
// never blocks on a slow socket.
package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
	pingInterval   = 54 * time.Second
)

var errSendBufferFull = errors.New("send buffer full")

// Client wraps one websocket connection and implements room.Conn.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mu          sync.Mutex
	closeCode   int
	closeReason string
}

func NewClient(conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) ID() string { return c.id }

// Send enqueues one outbound frame. It never blocks; a full buffer means the
// client is too slow and the frame is dropped with an error.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.ctx.Done():
		return context.Canceled
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close requests a server-side close with the given status code and reason.
// The write pump delivers the close frame; calling it from under the
// registry lock is safe.
func (c *Client) Close(code int, reason string) error {
	c.mu.Lock()
	c.closeCode, c.closeReason = code, reason
	c.mu.Unlock()
	c.cancel()
	return nil
}

// cleanup tears the connection down once. The send channel is left open on
// purpose: the registry may still hold this conn until the close path runs,
// and a late broadcast must land in the buffer instead of panicking.
func (c *Client) cleanup() {
	c.once.Do(func() {
		c.cancel()
		c.conn.Close()
	})
}

// ReadPump delivers inbound frames to the router until the connection dies,
// then runs the router's close path (implicit leave).
func (c *Client) ReadPump(rt *Router) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("conn", c.id).Any("panic", r).Msg("read pump panic")
		}
		c.cleanup()
		rt.HandleClose(c)
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("read pump exiting")
			return
		}
		rt.HandleMessage(c, msg)
	}
}

// WritePump drains the send channel onto the socket, keeping the connection
// alive with pings. Runs on the upgrade goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.cleanup()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.mu.Lock()
			code, reason := c.closeCode, c.closeReason
			c.mu.Unlock()
			if code != 0 {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(code, reason))
			}
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("conn", c.id).Msg("write failed")
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

// Serve runs the pumps for one upgraded connection. Blocks until the
// connection is gone.
func Serve(rt *Router, conn *websocket.Conn) {
	c := NewClient(conn)
	log.Debug().Str("conn", c.id).Msg("client connected")
	go c.ReadPump(rt)
	c.WritePump()
}

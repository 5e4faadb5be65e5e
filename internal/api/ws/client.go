package ws

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection. Outbound frames go through send and are
// written by writePump only.
type Client struct {
	id      string
	conn    *websocket.Conn
	hub     *Hub
	addr    string
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rateLimiter
	log     *zap.Logger
}

func newClient(id string, conn *websocket.Conn, hub *Hub, addr string) *Client {
	if hub.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(hub.cfg.MaxMessageSize)
	}
	return &Client{
		id:      id,
		conn:    conn,
		hub:     hub,
		addr:    addr,
		send:    make(chan []byte, max(hub.cfg.SendBuffer, 1)),
		done:    make(chan struct{}),
		limiter: newRateLimiter(hub.cfg.RateBurst, hub.cfg.RateInterval),
		log:     hub.log.With(zap.String("conn", id)),
	}
}

// enqueue hands a frame to the write pump. A client whose buffer is full is
// closed rather than allowed to stall the room.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.log.Warn("send_buffer_full")
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if !c.limiter.allow() {
			c.log.Debug("rate_limited")
			continue
		}
		c.hub.dispatch(c, raw)
	}
}

func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("message_too_large", zap.Int64("limit", c.hub.cfg.MaxMessageSize))
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived),
		errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		c.log.Debug("client_closed", zap.Error(err))
	default:
		c.log.Warn("read_failed", zap.Error(err))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if !c.write(websocket.TextMessage, msg) {
				c.close()
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				c.close()
				return
			}
		case <-c.done:
			c.drain()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drain flushes frames queued before close so replies are not lost.
func (c *Client) drain() {
	for {
		select {
		case msg := <-c.send:
			if !c.write(websocket.TextMessage, msg) {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(kind int, msg []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Debug("write_deadline_failed", zap.Error(err))
		return false
	}
	if err := c.conn.WriteMessage(kind, msg); err != nil {
		c.log.Debug("write_failed", zap.Error(err))
		return false
	}
	return true
}

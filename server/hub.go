// Package server exposes the remote touch surface over websockets, together with
// the playback state and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	// maxMessageSize bounds one inbound message; a full touch frame is far smaller.
	maxMessageSize = 4096

	sendBuffer      = 32
	broadcastBuffer = 128
)

// Hub tracks connected clients and fans serialized messages out to them.
// A client whose send queue is full is disconnected.
type Hub struct {
	logger *logrus.Entry

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewHub creates a hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		logger:     log.Component("hub"),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.RemoteClients.Set(float64(n))
			h.logger.WithField("client", c.id).Infof("client connected, %d total", n)

		case c := <-h.unregister:
			h.remove(c, "unregister")

		case msg := <-h.broadcast:
			var slow []*Client

			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()

			for _, c := range slow {
				h.remove(c, "slow client")
			}
		}
	}
}

// Broadcast enqueues msg for every client. It never blocks.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message")
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	metrics.RemoteClients.Set(0)
}

func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	c.close()
	metrics.RemoteClients.Set(float64(n))
	h.logger.WithField("client", c.id).Infof("client disconnected (%s), %d left", reason, n)
}

// Client is one websocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		if c.conn != nil {
			_ = c.conn.Close()
		}
		close(c.send)
	})
}

func closeStatus(err error) (int, string, bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}
	return 0, "", false
}

func (c *Client) exiting(pump string, err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}
	entry := c.hub.logger.WithField("client", c.id)
	if code, text, ok := closeStatus(err); ok {
		entry.Debugf("%s exiting: close %d %s", pump, code, text)
		return
	}
	entry.Debugf("%s exiting: %s", pump, err)
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.exiting("write pump", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.exiting("write pump", err)
				return
			}
		}
	}
}

// readPump hands every inbound message to handle until the connection fails,
// then unregisters the client.
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			c.exiting("read pump", err)
			return
		}
		// any traffic proves the client alive
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if kind == websocket.TextMessage {
			handle(c, data)
		}
	}
}

package webdisplay

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Thempra/xiaozhi-esp32/internal/logger"
	"github.com/Thempra/xiaozhi-esp32/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Inbound frames carry at most
	// a small control envelope.
	maxMessageSize = 1024

	// Per-session event queue depth. A session that falls this far behind
	// is treated as failed.
	sendQueueSize = 64
)

// Session lifecycle. A session only moves forward: connecting → open →
// closing → closed. It never re-enters open and its id is never reused.
const (
	stateConnecting int32 = iota
	stateOpen
	stateClosing
	stateClosed
)

// Client is one connected viewer session: the transport handle, its
// outbound event queue and its lifecycle state.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	state      atomic.Int32
	lastActive atomic.Int64 // unix nanoseconds of last inbound traffic
	log        *logger.Logger
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		ID:   hub.nextSessionID(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		log:  hub.log,
	}
	c.state.Store(stateConnecting)
	c.touch()
	return c
}

func (c *Client) setState(s int32) {
	c.state.Store(s)
}

// beginClose moves the session to closing unless it is already closing or
// closed.
func (c *Client) beginClose() {
	for {
		s := c.state.Load()
		if s == stateClosing || s == stateClosed {
			return
		}
		if c.state.CompareAndSwap(s, stateClosing) {
			return
		}
	}
}

func (c *Client) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

// LastActive reports when the session last produced inbound traffic.
func (c *Client) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

// ReadPump consumes frames from the session until it closes or fails.
// Malformed frames are dropped and logged; the session stays open. Valid
// text frames are logged only: client control messages are a reserved
// extension point.
func (c *Client) ReadPump() {
	defer func() {
		c.beginClose()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("Session %s read error: %v", c.ID, err)
			}
			return
		}
		c.touch()

		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			c.log.Warn("Session %s sent malformed frame, dropping: %v", c.ID, err)
			continue
		}
		c.log.Debug("Session %s message: type=%s", c.ID, msg.Type)
	}
}

// WritePump delivers queued events to the session and keeps it alive with
// pings. It is the only goroutine writing to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Queue closed by the hub.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				c.log.Warn("Session %s write failed: %v", c.ID, err)
				c.beginClose()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.beginClose()
				return
			}
		}
	}
}

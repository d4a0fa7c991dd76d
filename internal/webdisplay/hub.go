// Package webdisplay serves the display mirror to browsers: an HTTP/
// WebSocket server, a session registry and the event broadcaster.
package webdisplay

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Thempra/xiaozhi-esp32/internal/logger"
)

// StateFunc produces the encoded full_state snapshot sent to a session
// right after it connects.
type StateFunc func() []byte

// Hub tracks connected viewer sessions and fans encoded events out to
// them. Sessions are keyed by an opaque monotonically-issued id, never by
// a transport handle, so rapid disconnect/reconnect cannot confuse
// identities.
//
// The hub lock guards only map access and send-queue enqueues; network I/O
// happens exclusively in the per-session write pumps.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	maxClients int
	state      StateFunc
	nextID     atomic.Uint64
	log        *logger.Logger
}

// NewHub creates a hub bounded to maxClients concurrent sessions.
func NewHub(maxClients int) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		maxClients: maxClients,
		log:        logger.Global().WithPrefix("WebDisplay"),
	}
}

// SetStateFunc installs the snapshot producer used for newly connected
// sessions. Must be called before the server starts accepting.
func (h *Hub) SetStateFunc(fn StateFunc) {
	h.state = fn
}

func (h *Hub) nextSessionID() string {
	return strconv.FormatUint(h.nextID.Add(1), 10)
}

// Register adds a session and primes its send queue with the current
// full_state snapshot, so no broadcast can be delivered to it ahead of the
// snapshot. Returns false when the hub is at capacity; the session is then
// left untouched and existing sessions are unaffected.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.maxClients {
		h.log.Warn("Max clients reached (%d), rejecting new session", h.maxClients)
		return false
	}
	h.clients[c.ID] = c
	c.setState(stateOpen)
	if h.state != nil {
		c.send <- h.state()
	}
	h.log.Info("Session connected: id=%s, total=%d", c.ID, len(h.clients))
	return true
}

// Unregister removes a session and closes its send queue. Removing an
// absent session is a no-op. Removal does not close the underlying socket;
// the session's pumps own that.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	close(c.send)
	c.setState(stateClosed)
	h.log.Info("Session removed: id=%s, total=%d", c.ID, len(h.clients))
}

// Broadcast enqueues an encoded event for every registered session. A
// session whose queue is full is marked failed and scheduled for removal
// without aborting delivery to the rest.
func (h *Hub) Broadcast(event []byte) {
	var failed []*Client

	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.send <- event:
		default:
			failed = append(failed, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range failed {
		h.log.Warn("Session %s send queue full, removing", c.ID)
		c.beginClose()
		h.Unregister(c)
	}
}

// ClientCount returns the number of registered sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown removes every session and closes their send queues; the write
// pumps then send close frames and release the connections.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.beginClose()
		close(c.send)
		c.setState(stateClosed)
	}
}

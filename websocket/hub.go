// file: websocket/hub.go
package websocket

import (
	"sync"

	"catfish-cull/logger"
)

// DisplayLifecycle is told when a display gains a kiosk and when its last
// kiosk leaves.
type DisplayLifecycle interface {
	Acquire(display string)
	Release(display string)
}

// Hub tracks kiosk connections per display.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]map[*Connection]bool
	metrics   Metrics
	lifecycle DisplayLifecycle
}

// NewHub creates an empty hub. A nil metrics sink is replaced with NoopMetrics.
func NewHub(metrics Metrics) *Hub {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Hub{conns: make(map[string]map[*Connection]bool), metrics: metrics}
}

// SetLifecycle installs the hook told about first and last kiosks.
func (h *Hub) SetLifecycle(l DisplayLifecycle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lifecycle = l
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	if h.conns[c.display] == nil {
		h.conns[c.display] = make(map[*Connection]bool)
	}
	h.conns[c.display][c] = true
	n := len(h.conns[c.display])
	lc := h.lifecycle
	h.mu.Unlock()

	logger.Info.Printf("[Hub.register] Kiosk connected to '%s' (%d connected)", c.display, n)
	if lc != nil {
		lc.Acquire(c.display)
	}
	h.metrics.PublishKioskConnections(c.display, n)
}

// unregister removes c and closes its send channel. Safe to call more than once.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	set := h.conns[c.display]
	if !set[c] {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	close(c.send)
	n := len(set)
	if n == 0 {
		delete(h.conns, c.display)
	}
	lc := h.lifecycle
	h.mu.Unlock()

	logger.Info.Printf("[Hub.unregister] Kiosk left '%s' (%d connected)", c.display, n)
	if n == 0 && lc != nil {
		lc.Release(c.display)
	}
	h.metrics.PublishKioskConnections(c.display, n)
}

// releaseIfIdle hands display back when no kiosk holds it, e.g. after a
// failed upgrade.
func (h *Hub) releaseIfIdle(display string) {
	h.mu.RLock()
	n := len(h.conns[display])
	lc := h.lifecycle
	h.mu.RUnlock()
	if n == 0 && lc != nil {
		lc.Release(display)
	}
}

// Broadcast queues msg for every connection on display. Connections whose
// queue is full are dropped rather than allowed to stall the sender.
func (h *Hub) Broadcast(display string, msg []byte) {
	var slow []*Connection

	h.mu.RLock()
	for c := range h.conns[display] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn.Printf("[Hub.Broadcast] Dropping slow kiosk on '%s'", display)
		h.unregister(c)
	}
}

// Count returns how many kiosks are connected to display.
func (h *Hub) Count(display string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[display])
}

// sendTo queues msg for a single connection if it is still registered.
func (h *Hub) sendTo(c *Connection, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.conns[c.display][c] {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Package websocket provides the WebSocket server and connection handling.
// file: websocket/connection.go
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"catfish-cull/logger"

	"github.com/gorilla/websocket"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// DisplayRegistry is what a kiosk connection talks to. Open may start the
// display; CurrentState and HandleAction only reach running ones.
type DisplayRegistry interface {
	Open(display string) (DisplayState, error)
	HandleAction(ctx context.Context, display string, msg ClientMessage) error
	CurrentState(display string) (DisplayState, error)
}

// ClientMessage is the JSON a kiosk sends when someone touches the screen.
type ClientMessage struct {
	Action  string `json:"action"`
	Section string `json:"section,omitempty"`
	Delta   int    `json:"delta,omitempty"`
	Page    int    `json:"page,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Connection represents a single WebSocket connection for one kiosk.
type Connection struct {
	conn     WSConn
	send     chan []byte
	display  string
	hub      *Hub
	registry DisplayRegistry
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	actionTimeout  = 2 * time.Second
	DefaultDisplay = "main"
)

// Upgrader upgrades HTTP requests to WebSocket connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Kiosks are served from the same app; allow all for now.
		return true
	},
}

// ServeWs upgrades the request, registers the kiosk and sends it the current state.
func ServeWs(hub *Hub, registry DisplayRegistry, w http.ResponseWriter, r *http.Request) {
	display := r.URL.Query().Get("display")
	if display == "" {
		display = DefaultDisplay
	}
	state, err := registry.Open(display)
	if err != nil {
		logger.Error.Printf("[ServeWs] Display '%s' unavailable: %v", display, err)
		status := http.StatusServiceUnavailable
		if errors.Is(err, ErrUnknownDisplay) {
			status = http.StatusNotFound
		}
		http.Error(w, "display unavailable", status)
		return
	}

	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, display=%q", r.RemoteAddr, display)
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		hub.releaseIfIdle(display)
		return
	}

	c := newConnection(wsConn, display, hub, registry)
	hub.register(c)
	if msg, err := encodeState(state); err == nil {
		hub.sendTo(c, msg)
	}

	go c.readPump()
	go c.writePump()
}

func newConnection(conn WSConn, display string, hub *Hub, registry DisplayRegistry) *Connection {
	return &Connection{
		conn:     conn,
		send:     make(chan []byte, 256),
		display:  display,
		hub:      hub,
		registry: registry,
	}
}

// readPump handles inbound messages from the kiosk.
func (c *Connection) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error.Printf("[readPump] Recovered from panic on '%s': %v", c.display, r)
		}
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readPump] Read ended for %v: %v", c.conn.RemoteAddr(), err)
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		c.handleIncoming(msg)
	}
}

// handleIncoming forwards a kiosk action to its display and reports failures back to the kiosk only.
func (c *Connection) handleIncoming(msg ClientMessage) {
	logger.Debug.Printf("[handleIncoming] Action=%s, Display=%s", msg.Action, c.display)

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	if err := c.registry.HandleAction(ctx, c.display, msg); err != nil {
		logger.Warn.Printf("[handleIncoming] Action '%s' on '%s' failed: %v", msg.Action, c.display, err)
		reply, _ := json.Marshal(map[string]string{"action": "error", "error": err.Error()})
		c.hub.sendTo(c, reply)
	}
}

// writePump handles outbound messages to the kiosk, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

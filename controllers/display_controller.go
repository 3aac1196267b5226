// file: controllers/display_controller.go
package controllers

import (
	"net/http"

	"catfish-cull/websocket"

	"github.com/gin-gonic/gin"
)

// DisplayController exposes the check-in displays over HTTP and WebSocket.
type DisplayController struct {
	Registry websocket.DisplayRegistry
	Hub      *websocket.Hub
}

// NewDisplayController wires the controller to the running displays.
func NewDisplayController(registry websocket.DisplayRegistry, hub *websocket.Hub) *DisplayController {
	return &DisplayController{Registry: registry, Hub: hub}
}

// displayRequest is the body of the kiosk navigation endpoints.
type displayRequest struct {
	Display string `json:"display"`
	Section string `json:"section"`
	Delta   int    `json:"delta"`
	Page    int    `json:"page"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func displayName(name string) string {
	if name == "" {
		return websocket.DefaultDisplay
	}
	return name
}

// State returns the current projection of ?display= (default "main"). The
// display must already have been opened by a kiosk.
func (dc *DisplayController) State(c *gin.Context) {
	st, err := dc.Registry.CurrentState(displayName(c.Query("display")))
	if err != nil {
		respondError(c, "DisplayController.State", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Action returns a handler that applies the named display action and replies
// with the state that results from it.
func (dc *DisplayController) Action(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req displayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		name := displayName(req.Display)
		msg := websocket.ClientMessage{
			Action:  action,
			Section: req.Section,
			Delta:   req.Delta,
			Page:    req.Page,
			Width:   req.Width,
			Height:  req.Height,
		}
		if err := dc.Registry.HandleAction(c.Request.Context(), name, msg); err != nil {
			respondError(c, "DisplayController.Action", err)
			return
		}
		st, err := dc.Registry.CurrentState(name)
		if err != nil {
			respondError(c, "DisplayController.Action", err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// Updates upgrades the kiosk to a WebSocket that receives every state change.
func (dc *DisplayController) Updates(c *gin.Context) {
	websocket.ServeWs(dc.Hub, dc.Registry, c.Writer, c.Request)
}

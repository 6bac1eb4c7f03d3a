package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket connections and manages event routing
type WebSocketHandler struct {
	hub         *Hub
	flowHandler FlowEventHandler
}

// NewWebSocketHandler creates a new WebSocket handler and starts its hub
func NewWebSocketHandler() *WebSocketHandler {
	hub := NewHub()
	go hub.Run()

	return &WebSocketHandler{
		hub: hub,
	}
}

// SetFlowHandler sets the handler for session subscription requests
func (wh *WebSocketHandler) SetFlowHandler(flowHandler FlowEventHandler) {
	wh.flowHandler = flowHandler
}

// HandleWebSocket upgrades HTTP connection to WebSocket and manages client.
// A session_id query parameter subscribes the client immediately.
func (wh *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := NewClient(conn, wh.hub, wh.flowHandler)
	if sessionID := c.Query("session_id"); sessionID != "" {
		client.Subscribe(sessionID)
	}

	wh.hub.RegisterClient(client)
	client.Start()
}

// GetHub returns the WebSocket hub for broadcasting messages
func (wh *WebSocketHandler) GetHub() *Hub {
	return wh.hub
}

package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"capacitymarket/internal/types"
)

// WebSocket upgrader with CORS settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin policy is enforced by the HTTP CORS layer
		return true
	},
}

// Client represents a WebSocket connection, optionally subscribed to one game session
type Client struct {
	Conn        *websocket.Conn
	Send        chan []byte
	Hub         *Hub
	ID          string
	FlowHandler FlowEventHandler

	mu        sync.RWMutex
	sessionID string
}

// FlowEventHandler handles client requests about game sessions
type FlowEventHandler interface {
	HandleMessage(client *Client, message types.WebSocketMessage) error
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *Hub, flowHandler FlowEventHandler) *Client {
	return &Client{
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Hub:         hub,
		ID:          generateClientID(),
		FlowHandler: flowHandler,
	}
}

// Subscribe restricts the flow events this client receives to one session
func (c *Client) Subscribe(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// SessionID returns the subscribed session, or "" when unsubscribed
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// wants reports whether a message scoped to sessionID should reach this client
func (c *Client) wants(sessionID string) bool {
	subscribed := c.SessionID()
	return sessionID == "" || subscribed == "" || subscribed == sessionID
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", c.ID, err)
			}
			break
		}

		log.Printf("Received message from client %s: %s", c.ID, string(message))
		c.handleMessage(message)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error for client %s: %v", c.ID, err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// handleMessage routes messages to appropriate handlers based on message type
func (c *Client) handleMessage(messageBytes []byte) {
	var message types.WebSocketMessage
	if err := json.Unmarshal(messageBytes, &message); err != nil {
		log.Printf("Error parsing message from client %s: %v", c.ID, err)
		c.SendError("Invalid message format", err.Error())
		return
	}

	switch message.Type {
	case types.SubscribeSession, types.GetFlowStatus:
		if c.FlowHandler == nil {
			c.SendError("Flow handler not available", "Internal error")
			return
		}
		if err := c.FlowHandler.HandleMessage(c, message); err != nil {
			log.Printf("Flow handler error for client %s: %v", c.ID, err)
		}

	default:
		log.Printf("Unknown message type from client %s: %s", c.ID, message.Type)
		c.SendError("Unknown message type", string(message.Type))
	}
}

// SendError sends an error response to the client
func (c *Client) SendError(message, errorMsg string) {
	c.SendMessage(types.WebSocketMessage{
		Type: types.Error,
		Data: map[string]interface{}{
			"success": false,
			"message": message,
			"error":   errorMsg,
		},
	})
}

// SendMessage sends a WebSocket message to the client
func (c *Client) SendMessage(message types.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message for client %s: %v", c.ID, err)
		return
	}

	select {
	case c.Send <- data:
	default:
		log.Printf("Client %s send channel full, dropping message", c.ID)
	}
}

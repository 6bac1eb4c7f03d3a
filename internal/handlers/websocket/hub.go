package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"capacitymarket/internal/types"
)

// outbound is an encoded message, optionally scoped to one session
type outbound struct {
	sessionID string
	data      []byte
}

// Hub maintains active clients and broadcasts messages. Flow events reach the
// clients subscribed to their session plus clients with no subscription.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s connected. Total clients: %d", client.ID, h.GetClientCount())

			statusMsg := types.WebSocketMessage{
				Type: types.ConnectionStatus,
				Data: types.ConnectionStatusData{
					Status:    "connected",
					Message:   "Successfully connected to WebSocket",
					Timestamp: GetCurrentTimestamp(),
				},
			}
			if data, err := json.Marshal(statusMsg); err == nil {
				select {
				case client.Send <- data:
				default:
					h.drop(client)
				}
			}

		case client := <-h.unregister:
			h.drop(client)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if !client.wants(message.sessionID) {
					continue
				}
				select {
				case client.Send <- message.data:
				default:
					h.dropLocked(client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(client)
}

// dropLocked removes a client whose Send channel is closed here. Callers hold h.mutex.
func (h *Hub) dropLocked(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		log.Printf("Client %s disconnected. Total clients: %d", client.ID, len(h.clients))
	}
}

// BroadcastMessage broadcasts a message to every interested client
func (h *Hub) BroadcastMessage(msgType types.MessageType, data interface{}) {
	message := types.WebSocketMessage{
		Type: msgType,
		Data: data,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	var sessionID string
	if event, ok := data.(types.FlowEventData); ok {
		sessionID = event.SessionID
	}
	h.broadcast <- outbound{sessionID: sessionID, data: jsonData}
}

// BroadcastMessageString broadcasts a message with string message type (for engines)
func (h *Hub) BroadcastMessageString(msgType string, data interface{}) {
	h.BroadcastMessage(types.MessageType(msgType), data)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

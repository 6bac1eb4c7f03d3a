package websocket

import (
	"encoding/json"
	"fmt"

	"capacitymarket/internal/engines/gameflow"
	"capacitymarket/internal/types"
)

// SessionRunner runs a function against a session's flow engine
type SessionRunner interface {
	WithSession(sessionID string, fn func(engine *gameflow.GameFlowEngine) error) error
}

// SubscribeData selects the session a client follows
type SubscribeData struct {
	SessionID string `json:"session_id"`
}

// FlowEventHandlerImpl answers subscription and status requests
type FlowEventHandlerImpl struct {
	sessions SessionRunner
}

// NewFlowEventHandler creates a new flow event handler
func NewFlowEventHandler(sessions SessionRunner) *FlowEventHandlerImpl {
	return &FlowEventHandlerImpl{sessions: sessions}
}

// HandleMessage handles subscribe and status messages
func (h *FlowEventHandlerImpl) HandleMessage(client *Client, message types.WebSocketMessage) error {
	dataBytes, _ := json.Marshal(message.Data)
	var req SubscribeData
	if message.Data != nil {
		if err := json.Unmarshal(dataBytes, &req); err != nil {
			client.SendError("Invalid request data", err.Error())
			return err
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = client.SessionID()
	}
	if sessionID == "" {
		client.SendError("No session selected", "session_id is required")
		return fmt.Errorf("client %s sent %s without a session", client.ID, message.Type)
	}

	var status *gameflow.FlowStatus
	err := h.sessions.WithSession(sessionID, func(engine *gameflow.GameFlowEngine) error {
		var err error
		status, err = engine.Status()
		return err
	})
	if err != nil {
		client.SendError("Session unavailable", err.Error())
		return err
	}

	if message.Type == types.SubscribeSession {
		client.Subscribe(sessionID)
	}
	client.SendMessage(types.WebSocketMessage{Type: types.StatusUpdate, Data: status})
	return nil
}

package types

// MessageType defines the type of WebSocket message
type MessageType string

const (
	ConnectionStatus MessageType = "connection_status"
	StatusUpdate     MessageType = "status_update"
	Error            MessageType = "error"
	// Client requests
	SubscribeSession MessageType = "subscribe_session"
	GetFlowStatus    MessageType = "get_flow_status"
	// Game flow events
	YearPlanningStarted  MessageType = "year_planning_started"
	AnnualBiddingOpen    MessageType = "annual_bidding_open"
	AnnualMarketsCleared MessageType = "annual_markets_cleared"
	NoBidsSubmitted      MessageType = "no_bids_submitted"
	YearCompleted        MessageType = "year_completed"
	GameCompleted        MessageType = "game_completed"
	// Participant activity
	PlantCreated MessageType = "plant_created"
	BidSubmitted MessageType = "bid_submitted"
)

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectionStatusData represents connection status message data
type ConnectionStatusData struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// FlowEventData wraps a game flow result with the session it belongs to
type FlowEventData struct {
	SessionID string      `json:"session_id"`
	Year      int         `json:"year"`
	State     string      `json:"state"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

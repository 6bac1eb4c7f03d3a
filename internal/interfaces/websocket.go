package interfaces

// WebSocketHub interface to avoid import cycles between engines and the hub
type WebSocketHub interface {
	BroadcastMessageString(msgType string, data interface{})
}

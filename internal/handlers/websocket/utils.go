package websocket

import (
	"time"

	"github.com/google/uuid"
)

// GetCurrentTimestamp returns current timestamp in milliseconds
func GetCurrentTimestamp() int64 {
	return time.Now().UnixMilli()
}

// generateClientID generates a unique client ID
func generateClientID() string {
	return "client_" + uuid.NewString()[:8]
}

package model

// WebSocket message types
const (
	WSMessageTypeActivity = "activity"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSActivityMessage carries one activity entry to job subscribers
type WSActivityMessage struct {
	Type  string        `json:"type"`
	JobID string        `json:"jobId"`
	Entry ActivityEntry `json:"entry"`
}

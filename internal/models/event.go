package models

// Event is emitted over WebSocket connections. Only one of the payload
// fields is set, matching Type.
type Event struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
	CheckIn *CheckIn     `json:"checkIn,omitempty"`
}

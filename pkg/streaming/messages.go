package streaming

import (
	"encoding/json"
)

// Message type constants matching the streaming protocol.
const (
	TypeHello      = "hello"
	TypeSnapshot   = "snapshot"
	TypeAttemptEnd = "attempt_end"
	TypeAction     = "action"
	TypeRestart    = "restart"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HelloPayload is sent once to each client on connect.
type HelloPayload struct {
	TickRate     int     `json:"tickRate"`
	Countdown    float64 `json:"countdown"`
	LaunchWindow float64 `json:"launchWindow"`
}

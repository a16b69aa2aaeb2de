package ws

import "encoding/json"

const (
	// client - server
	MsgDrop = "drop"
	MsgPing = "ping"

	// server - client
	MsgSnapshot   = "snapshot"
	MsgDropResult = "drop_result"
	MsgPong       = "pong"
	MsgError      = "error"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encode(msgType string, data any) ([]byte, error) {
	env := struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{Type: msgType, Data: data}
	return json.Marshal(env)
}

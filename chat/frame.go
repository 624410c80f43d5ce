package chat

import "encoding/json"

// Frame is the wire envelope for every inbound and outbound socket event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newFrame(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}

	return Frame{Event: event, Data: data}, nil
}

// remoteFrame travels over the redis bridge between broker processes: the
// target session id is resolved by the sender, delivery happens wherever
// that session lives.
type remoteFrame struct {
	SessionID string          `json:"session_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// errorReply is the direct reply sent when an operation did not complete.
type errorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

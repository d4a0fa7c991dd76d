package protocol

import "encoding/json"

// Client message types. Inbound messages are accepted and logged but carry
// no behavior yet; get_state is reserved for a future explicit resync.
const (
	ClientTypeGetState = "get_state"
)

// ClientMessage is the envelope for text frames sent by a viewer.
type ClientMessage struct {
	Type string `json:"type"`
}

// ParseClientMessage decodes an inbound text frame.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"time"

	"finledger/internal/core"
)

// ActivityMessage carries one timeline entry from a mutating operation to
// the worker that persists it.
type ActivityMessage struct {
	Activity  core.Activity `json:"activity"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewActivityMessage wraps an activity for publishing.
func NewActivityMessage(a core.Activity) *ActivityMessage {
	return &ActivityMessage{Activity: a, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON parses a message from JSON bytes.
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

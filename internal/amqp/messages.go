package amqp

import (
	"encoding/json"
	"time"
)

// EventPersisted is sent after a key was durably written.
const EventPersisted = "persisted"

// ChangeMessage tells listeners that a storage key changed. It carries no
// data; listeners read the store themselves.
type ChangeMessage struct {
	Key       string    `json:"key"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(key, event string) *ChangeMessage {
	return &ChangeMessage{
		Key:       key,
		Event:     event,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

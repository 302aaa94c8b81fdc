package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"smartbudget/internal/core"
	"smartbudget/internal/ledger"
)

// SyncMessage is the wire form of a ledger event. It only names the
// change; consumers read the record itself from the shared store.
type SyncMessage struct {
	Type      ledger.EventType `json:"type"`
	Kind      core.Kind        `json:"kind,omitempty"`
	ID        string           `json:"id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewSyncMessage wraps a ledger event. A zero event time is replaced with
// the current time.
func NewSyncMessage(e ledger.Event) *SyncMessage {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &SyncMessage{
		Type:      e.Type,
		Kind:      e.Kind,
		ID:        e.ID,
		Timestamp: ts,
	}
}

// Event converts the message back into a ledger event.
func (m *SyncMessage) Event() ledger.Event {
	return ledger.Event{Type: m.Type, Kind: m.Kind, ID: m.ID, At: m.Timestamp}
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON decodes and checks a message body.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message without type")
	}
	if msg.Kind != "" {
		if err := msg.Kind.Validate(); err != nil {
			return nil, err
		}
	}
	return &msg, nil
}

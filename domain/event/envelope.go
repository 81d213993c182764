package event

import (
	"encoding/json"
	"time"
)

// Envelope is the wire-level wrapper around every pushed event. The shape is
// part of the client contract and must stay stable.
type Envelope struct {
	Type      string  `json:"type"`
	Data      any     `json:"data"`
	Timestamp string  `json:"timestamp"`
	UserID    *string `json:"user_id"`
}

// NewEnvelope wraps an event for the wire. The timestamp is assigned here, at
// publish time; it is the only ordering signal clients get.
func NewEnvelope(e Event, at time.Time) Envelope {
	env := Envelope{
		Type:      e.Kind(),
		Data:      e.Data(),
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	}
	if actor := e.Actor(); actor != "" {
		env.UserID = &actor
	}
	return env
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

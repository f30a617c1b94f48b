package events

import (
	"encoding/json"
	"time"
)

// Envelope is the wire shape published to the notification broker.
type Envelope struct {
	EventType  string          `json:"event_type"`
	ProjectID  string          `json:"project_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

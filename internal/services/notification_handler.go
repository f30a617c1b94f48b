package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/events"
	"buildtrack/internal/notify"
)

// NotificationHandler forwards event payloads to the notification
// broker on a per-project channel. The external notifier picks them up
// from there; a failed publish is retried through the outbox.
type NotificationHandler struct {
	publisher notify.Publisher
	clock     func() time.Time
}

func NewNotificationHandler(publisher notify.Publisher) *NotificationHandler {
	return &NotificationHandler{publisher: publisher, clock: time.Now}
}

func (h *NotificationHandler) Handle(ctx context.Context, eventType string, payload interface{}) error {
	var projectID uuid.UUID

	switch e := payload.(type) {
	case *events.DocumentEvent:
		projectID = e.ProjectID
	case *events.MilestoneStatusChangedEvent:
		projectID = e.ProjectID
	case *events.MilestoneAutoCompletedEvent:
		projectID = e.ProjectID
	default:
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := events.Envelope{
		EventType:  eventType,
		ProjectID:  projectID.String(),
		OccurredAt: h.clock().UTC(),
		Payload:    raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, channelFor(projectID), data)
}

func channelFor(projectID uuid.UUID) string {
	return "notifications:project:" + projectID.String()
}

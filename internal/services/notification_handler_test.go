package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildtrack/internal/events"
)

type capturedPublish struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	published []capturedPublish
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, capturedPublish{channel: channel, payload: payload})
	return nil
}

func TestNotificationHandlerWrapsPayloadInEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	h := NewNotificationHandler(pub)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	h.clock = func() time.Time { return now }

	projectID := uuid.New()
	payload := &events.MilestoneAutoCompletedEvent{
		MilestoneID: uuid.New(),
		ProjectID:   projectID,
		WorkspaceID: uuid.New(),
	}
	require.NoError(t, h.Handle(context.Background(), events.EventTypeMilestoneAutoCompleted, payload))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "notifications:project:"+projectID.String(), pub.published[0].channel)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(pub.published[0].payload, &env))
	assert.Equal(t, events.EventTypeMilestoneAutoCompleted, env.EventType)
	assert.Equal(t, projectID.String(), env.ProjectID)
	assert.True(t, env.OccurredAt.Equal(now))

	var inner events.MilestoneAutoCompletedEvent
	require.NoError(t, json.Unmarshal(env.Payload, &inner))
	assert.Equal(t, payload.MilestoneID, inner.MilestoneID)
}

func TestNotificationHandlerRejectsUnexpectedPayload(t *testing.T) {
	h := NewNotificationHandler(&fakePublisher{})

	err := h.Handle(context.Background(), "document_uploaded", map[string]string{"x": "y"})
	require.Error(t, err)
}

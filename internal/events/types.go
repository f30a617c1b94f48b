package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event type tags stored on outbox rows.
const (
	EventTypeDocumentUploaded       = "document_uploaded"
	EventTypeDocumentApproved       = "document_approved"
	EventTypeDocumentRejected       = "document_rejected"
	EventTypeMilestoneStatusChanged = "milestone_status_changed"
	EventTypeMilestoneAutoCompleted = "milestone_auto_completed"
)

// DocumentEvent is the payload for document_uploaded, document_approved
// and document_rejected.
type DocumentEvent struct {
	DocumentID    uuid.UUID `json:"documentId"`
	RequirementID uuid.UUID `json:"requirementId"`
	MilestoneID   uuid.UUID `json:"milestoneId"`
	ProjectID     uuid.UUID `json:"projectId"`
	WorkspaceID   uuid.UUID `json:"workspaceId"`
	Version       int       `json:"version"`
	ActorID       uuid.UUID `json:"actorId"`
	Reason        string    `json:"reason,omitempty"`
}

// MilestoneStatusChangedEvent is the payload for milestone_status_changed.
type MilestoneStatusChangedEvent struct {
	MilestoneID uuid.UUID `json:"milestoneId"`
	ProjectID   uuid.UUID `json:"projectId"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	ActorID     uuid.UUID `json:"actorId"`
}

// MilestoneAutoCompletedEvent is the payload for milestone_auto_completed,
// the shape handed to the external notifier.
type MilestoneAutoCompletedEvent struct {
	MilestoneID  uuid.UUID   `json:"milestoneId"`
	ProjectID    uuid.UUID   `json:"projectId"`
	WorkspaceID  uuid.UUID   `json:"workspaceId"`
	ApprovedBy   uuid.UUID   `json:"approvedBy"`
	Stakeholders []uuid.UUID `json:"stakeholders"`
}

// Decode unmarshals an outbox payload into the typed struct for its
// event type, so handlers never work with untyped maps. Unknown types
// return (nil, nil); the dispatcher treats those as processed.
func Decode(eventType string, payload []byte) (interface{}, error) {
	switch eventType {
	case EventTypeDocumentUploaded, EventTypeDocumentApproved, EventTypeDocumentRejected:
		var e DocumentEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		return &e, nil
	case EventTypeMilestoneStatusChanged:
		var e MilestoneStatusChangedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		return &e, nil
	case EventTypeMilestoneAutoCompleted:
		var e MilestoneAutoCompletedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		return &e, nil
	}
	return nil, nil
}

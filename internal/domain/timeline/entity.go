package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Entry kinds recorded against a project's timeline.
const (
	KindDocumentUploaded       = "DOCUMENT_UPLOADED"
	KindDocumentApproved       = "DOCUMENT_APPROVED"
	KindDocumentRejected       = "DOCUMENT_REJECTED"
	KindMilestoneStatusChanged = "MILESTONE_STATUS_CHANGED"
	KindChecklistItemDone      = "CHECKLIST_ITEM_DONE"
)

// Entry represents the timeline_entries table (append-only audit facts).
type Entry struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	MilestoneID uuid.NullUUID
	ActorID     uuid.UUID
	Kind        string
	Message     string
	CreatedAt   time.Time
}

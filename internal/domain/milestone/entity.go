package milestone

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a milestone.
type Status string

const (
	StatusNotStarted    Status = "NOT_STARTED"
	StatusInProgress    Status = "IN_PROGRESS"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusCompleted     Status = "COMPLETED"
	StatusBlocked       Status = "BLOCKED"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPendingReview, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Milestone represents the milestones table.
// Blocked and FailedCheck are advisory overlays; they do not drive Status.
// CompletedAt is set if and only if Status == COMPLETED.
type Milestone struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Position    int
	Status      Status
	Blocked     bool
	FailedCheck bool
	CompletedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChecklistItem represents the checklist_items table
type ChecklistItem struct {
	ID          uuid.UUID
	MilestoneID uuid.UUID
	Title       string
	Required    bool
	Done        bool
	Position    int
	DoneBy      uuid.NullUUID
	DoneAt      sql.NullTime
}

// Assignee represents milestone_assignees; non-privileged callers must
// appear here to act on the milestone.
type Assignee struct {
	MilestoneID uuid.UUID
	UserID      uuid.UUID
}

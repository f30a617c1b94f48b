package document

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/user"
)

// Document status values. A document is immutable once it leaves PENDING.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// RequirementState is derived from the requirement's current document:
// NOT_PROVIDED if none uploaded, otherwise it mirrors that document.
type RequirementState string

const (
	StateNotProvided   RequirementState = "NOT_PROVIDED"
	StatePendingReview RequirementState = "PENDING_REVIEW"
	StateApproved      RequirementState = "APPROVED"
	StateRejected      RequirementState = "REJECTED"
)

// FromDocumentStatus maps a current document status onto the owning
// requirement's state.
func FromDocumentStatus(s Status) RequirementState {
	switch s {
	case StatusApproved:
		return StateApproved
	case StatusRejected:
		return StateRejected
	default:
		return StatePendingReview
	}
}

// DocumentType represents the document_types table (upload policy).
// AllowedExtensions is a comma-separated list of lowercase extensions
// without dots, e.g. "pdf,dwg,xlsx".
type DocumentType struct {
	ID                uuid.UUID
	WorkspaceID       uuid.UUID
	Name              string
	AllowedExtensions string
	MaxSizeBytes      int64
	ApproverRole      user.Role
}

// ExtensionAllowed checks a file name against the allowed extension list.
func (t DocumentType) ExtensionAllowed(fileName string) bool {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return false
	}
	ext := strings.ToLower(fileName[idx+1:])
	for _, allowed := range strings.Split(t.AllowedExtensions, ",") {
		if strings.TrimSpace(allowed) == ext {
			return true
		}
	}
	return false
}

// Requirement represents the document_requirements table
type Requirement struct {
	ID                uuid.UUID
	MilestoneID       uuid.UUID
	WorkspaceID       uuid.UUID
	DocumentTypeID    uuid.UUID
	Name              string
	Required          bool
	State             RequirementState
	CurrentDocumentID uuid.NullUUID
	Position          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Document represents the documents table. Versions per requirement are
// dense, start at 1 and are never reused.
type Document struct {
	ID              uuid.UUID
	RequirementID   uuid.UUID
	Version         int
	StorageKey      string
	FileName        string
	FileSize        int64
	Status          Status
	UploadedBy      uuid.UUID
	UploadedAt      time.Time
	ReviewedBy      uuid.NullUUID
	ReviewedAt      sql.NullTime
	RejectionReason sql.NullString
}

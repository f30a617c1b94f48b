package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/outbox"
	"buildtrack/internal/domain/project"
	"buildtrack/internal/domain/timeline"
	"buildtrack/internal/domain/user"
)

// Mutating methods accept a tx DBTX so services can group writes into
// one transaction; passing nil falls back to the repository's own pool.
// Every query is scoped by workspace id explicitly.

type ProjectRepository interface {
	Create(ctx context.Context, tx DBTX, p *project.Project) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (project.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]project.Project, error)
}

type MilestoneRepository interface {
	Create(ctx context.Context, tx DBTX, m *milestone.Milestone) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (milestone.Milestone, error)
	ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]milestone.Milestone, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status milestone.Status, completedAt sql.NullTime) error
	UpdateFlags(ctx context.Context, tx DBTX, id uuid.UUID, blocked, failedCheck bool) error

	CreateChecklistItem(ctx context.Context, tx DBTX, item *milestone.ChecklistItem) error
	GetChecklistItem(ctx context.Context, id uuid.UUID) (milestone.ChecklistItem, error)
	ListChecklistItems(ctx context.Context, milestoneID uuid.UUID) ([]milestone.ChecklistItem, error)
	SetChecklistItemDone(ctx context.Context, tx DBTX, id uuid.UUID, done bool, doneBy uuid.NullUUID, doneAt sql.NullTime) error

	AddAssignee(ctx context.Context, tx DBTX, a milestone.Assignee) error
	IsAssignee(ctx context.Context, milestoneID, userID uuid.UUID) (bool, error)
	ListAssignees(ctx context.Context, milestoneID uuid.UUID) ([]uuid.UUID, error)
}

type DocumentRepository interface {
	CreateType(ctx context.Context, tx DBTX, t *document.DocumentType) error
	GetType(ctx context.Context, workspaceID, id uuid.UUID) (document.DocumentType, error)

	CreateRequirement(ctx context.Context, tx DBTX, r *document.Requirement) error
	GetRequirement(ctx context.Context, workspaceID, id uuid.UUID) (document.Requirement, error)
	ListRequirementsByMilestone(ctx context.Context, milestoneID uuid.UUID) ([]document.Requirement, error)
	UpdateRequirementState(ctx context.Context, tx DBTX, id uuid.UUID, state document.RequirementState, currentDocumentID uuid.NullUUID) error

	CreateDocument(ctx context.Context, tx DBTX, d *document.Document) error
	GetDocument(ctx context.Context, workspaceID, id uuid.UUID) (document.Document, error)
	ListDocumentsByRequirement(ctx context.Context, requirementID uuid.UUID) ([]document.Document, error)
	CountVersions(ctx context.Context, tx DBTX, requirementID uuid.UUID) (int, error)
	UpdateDocumentReview(ctx context.Context, tx DBTX, id uuid.UUID, status document.Status, reviewedBy uuid.UUID, reviewedAt time.Time, reason sql.NullString) error
}

type TimelineRepository interface {
	Create(ctx context.Context, tx DBTX, e *timeline.Entry) error
	ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID, limit int) ([]timeline.Entry, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, tx DBTX, e *outbox.IntegrationEvent) error
	PendingBatch(ctx context.Context, limit, maxAttempts int) ([]outbox.IntegrationEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordFailure(ctx context.Context, id uuid.UUID, errMsg string) error
	List(ctx context.Context, onlyUnprocessed bool, limit int) ([]outbox.IntegrationEvent, error)
}

type UserRepository interface {
	Create(ctx context.Context, tx DBTX, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByWorkspaceRoles(ctx context.Context, workspaceID uuid.UUID, roles []user.Role) ([]user.User, error)
}

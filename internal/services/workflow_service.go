package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/timeline"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/events"
	"buildtrack/internal/repository"
	workflow_errors "buildtrack/pkg/errors"
)

// ReviewDecision is the outcome a reviewer records on a pending document.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "APPROVE"
	DecisionReject  ReviewDecision = "REJECT"
)

// UploadInput carries the metadata of a confirmed upload. Bytes live in
// object storage under StorageKey; they never transit this service.
type UploadInput struct {
	FileName   string
	FileSize   int64
	StorageKey string
}

// WorkflowService implements the document and milestone state
// transitions. Every mutation and its outbox event run in one
// transaction.
type WorkflowService struct {
	db            repository.DBTX
	milestoneRepo repository.MilestoneRepository
	documentRepo  repository.DocumentRepository
	timelineRepo  repository.TimelineRepository
	outboxRepo    repository.OutboxRepository
	clock         func() time.Time
}

func NewWorkflowService(
	db repository.DBTX,
	milestoneRepo repository.MilestoneRepository,
	documentRepo repository.DocumentRepository,
	timelineRepo repository.TimelineRepository,
	outboxRepo repository.OutboxRepository,
) *WorkflowService {
	return &WorkflowService{
		db:            db,
		milestoneRepo: milestoneRepo,
		documentRepo:  documentRepo,
		timelineRepo:  timelineRepo,
		outboxRepo:    outboxRepo,
		clock:         time.Now,
	}
}

// UploadDocument records a new document version against a requirement.
// Versions per requirement are dense and start at 1. A new upload
// supersedes review of a prior pending version: the current pointer
// moves and only the current document is reviewable.
func (s *WorkflowService) UploadDocument(ctx context.Context, actor Actor, requirementID uuid.UUID, in UploadInput) (document.Document, error) {
	req, err := s.documentRepo.GetRequirement(ctx, actor.WorkspaceID, requirementID)
	if err != nil {
		return document.Document{}, err
	}
	ms, err := s.milestoneRepo.GetByID(ctx, actor.WorkspaceID, req.MilestoneID)
	if err != nil {
		return document.Document{}, err
	}

	if !user.Privileged(actor.Role) {
		assigned, err := s.milestoneRepo.IsAssignee(ctx, ms.ID, actor.ID)
		if err != nil {
			return document.Document{}, err
		}
		if !assigned {
			return document.Document{}, workflow_errors.Permissionf("user %s is not assigned to milestone %s", actor.ID, ms.ID)
		}
	}

	docType, err := s.documentRepo.GetType(ctx, actor.WorkspaceID, req.DocumentTypeID)
	if err != nil {
		return document.Document{}, err
	}
	if !docType.ExtensionAllowed(in.FileName) {
		return document.Document{}, workflow_errors.Validationf("file extension of %q not allowed for %s", in.FileName, docType.Name)
	}
	if in.FileSize > docType.MaxSizeBytes {
		return document.Document{}, workflow_errors.Validationf("file size %d exceeds maximum %d bytes", in.FileSize, docType.MaxSizeBytes)
	}

	now := s.clock()
	var doc document.Document
	err = repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		count, err := s.documentRepo.CountVersions(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		doc = document.Document{
			ID:            uuid.New(),
			RequirementID: req.ID,
			Version:       count + 1,
			StorageKey:    in.StorageKey,
			FileName:      in.FileName,
			FileSize:      in.FileSize,
			Status:        document.StatusPending,
			UploadedBy:    actor.ID,
			UploadedAt:    now,
		}
		if err := s.documentRepo.CreateDocument(ctx, tx, &doc); err != nil {
			return err
		}
		current := uuid.NullUUID{UUID: doc.ID, Valid: true}
		if err := s.documentRepo.UpdateRequirementState(ctx, tx, req.ID, document.StatePendingReview, current); err != nil {
			return err
		}
		if err := s.timelineRepo.Create(ctx, tx, &timeline.Entry{
			ID:          uuid.New(),
			ProjectID:   ms.ProjectID,
			MilestoneID: uuid.NullUUID{UUID: ms.ID, Valid: true},
			ActorID:     actor.ID,
			Kind:        timeline.KindDocumentUploaded,
			Message:     fmt.Sprintf("%s v%d uploaded", req.Name, doc.Version),
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return appendOutboxEvent(ctx, s.outboxRepo, tx, events.EventTypeDocumentUploaded, events.DocumentEvent{
			DocumentID:    doc.ID,
			RequirementID: req.ID,
			MilestoneID:   ms.ID,
			ProjectID:     ms.ProjectID,
			WorkspaceID:   actor.WorkspaceID,
			Version:       doc.Version,
			ActorID:       actor.ID,
		})
	})
	if err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// ReviewDocument moves the requirement's current pending document to a
// terminal status. A rejection requires a non-empty reason.
func (s *WorkflowService) ReviewDocument(ctx context.Context, actor Actor, documentID uuid.UUID, decision ReviewDecision, reason string) error {
	if !user.CanReview(actor.Role) {
		return workflow_errors.Permissionf("role %s cannot review documents", actor.Role)
	}

	doc, err := s.documentRepo.GetDocument(ctx, actor.WorkspaceID, documentID)
	if err != nil {
		return err
	}
	req, err := s.documentRepo.GetRequirement(ctx, actor.WorkspaceID, doc.RequirementID)
	if err != nil {
		return err
	}
	ms, err := s.milestoneRepo.GetByID(ctx, actor.WorkspaceID, req.MilestoneID)
	if err != nil {
		return err
	}

	if doc.Status != document.StatusPending {
		return fmt.Errorf("%w: document %s already reviewed", workflow_errors.ErrConflict, doc.ID)
	}
	if !req.CurrentDocumentID.Valid || req.CurrentDocumentID.UUID != doc.ID {
		return fmt.Errorf("%w: document %s superseded by a newer version", workflow_errors.ErrConflict, doc.ID)
	}

	var newStatus document.Status
	var entryKind, eventType string
	switch decision {
	case DecisionApprove:
		newStatus = document.StatusApproved
		entryKind = timeline.KindDocumentApproved
		eventType = events.EventTypeDocumentApproved
	case DecisionReject:
		if strings.TrimSpace(reason) == "" {
			return workflow_errors.Validationf("rejection reason is required")
		}
		newStatus = document.StatusRejected
		entryKind = timeline.KindDocumentRejected
		eventType = events.EventTypeDocumentRejected
	default:
		return workflow_errors.Validationf("unknown review decision %q", decision)
	}

	now := s.clock()
	reasonVal := sql.NullString{}
	if decision == DecisionReject {
		reasonVal = sql.NullString{String: reason, Valid: true}
	}

	return repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		if err := s.documentRepo.UpdateDocumentReview(ctx, tx, doc.ID, newStatus, actor.ID, now, reasonVal); err != nil {
			return err
		}
		if err := s.documentRepo.UpdateRequirementState(ctx, tx, req.ID, document.FromDocumentStatus(newStatus), req.CurrentDocumentID); err != nil {
			return err
		}
		msg := fmt.Sprintf("%s v%d %s", req.Name, doc.Version, strings.ToLower(string(newStatus)))
		if err := s.timelineRepo.Create(ctx, tx, &timeline.Entry{
			ID:          uuid.New(),
			ProjectID:   ms.ProjectID,
			MilestoneID: uuid.NullUUID{UUID: ms.ID, Valid: true},
			ActorID:     actor.ID,
			Kind:        entryKind,
			Message:     msg,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return appendOutboxEvent(ctx, s.outboxRepo, tx, eventType, events.DocumentEvent{
			DocumentID:    doc.ID,
			RequirementID: req.ID,
			MilestoneID:   ms.ID,
			ProjectID:     ms.ProjectID,
			WorkspaceID:   actor.WorkspaceID,
			Version:       doc.Version,
			ActorID:       actor.ID,
			Reason:        reason,
		})
	})
}

// ChangeMilestoneStatus transitions a milestone. A matching new status
// is a no-op. Entering COMPLETED stamps completedAt; leaving it clears
// the stamp, keeping completedAt set if and only if the milestone is
// completed. Role checks belong to the caller; the auto-completion
// handler reuses this path with the approver as actor.
func (s *WorkflowService) ChangeMilestoneStatus(ctx context.Context, actor Actor, milestoneID uuid.UUID, newStatus milestone.Status) error {
	if !newStatus.Valid() {
		return workflow_errors.Validationf("unknown milestone status %q", newStatus)
	}
	ms, err := s.milestoneRepo.GetByID(ctx, actor.WorkspaceID, milestoneID)
	if err != nil {
		return err
	}
	if ms.Status == newStatus {
		return nil
	}

	now := s.clock()
	completedAt := sql.NullTime{}
	if newStatus == milestone.StatusCompleted {
		completedAt = sql.NullTime{Time: now, Valid: true}
	}

	return repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		if err := s.milestoneRepo.UpdateStatus(ctx, tx, ms.ID, newStatus, completedAt); err != nil {
			return err
		}
		if err := s.timelineRepo.Create(ctx, tx, &timeline.Entry{
			ID:          uuid.New(),
			ProjectID:   ms.ProjectID,
			MilestoneID: uuid.NullUUID{UUID: ms.ID, Valid: true},
			ActorID:     actor.ID,
			Kind:        timeline.KindMilestoneStatusChanged,
			Message:     fmt.Sprintf("%s: %s -> %s", ms.Name, ms.Status, newStatus),
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return appendOutboxEvent(ctx, s.outboxRepo, tx, events.EventTypeMilestoneStatusChanged, events.MilestoneStatusChangedEvent{
			MilestoneID: ms.ID,
			ProjectID:   ms.ProjectID,
			WorkspaceID: actor.WorkspaceID,
			OldStatus:   string(ms.Status),
			NewStatus:   string(newStatus),
			ActorID:     actor.ID,
		})
	})
}

// SetChecklistItemDone toggles a checklist item and records the fact on
// the timeline.
func (s *WorkflowService) SetChecklistItemDone(ctx context.Context, actor Actor, itemID uuid.UUID, done bool) error {
	item, err := s.milestoneRepo.GetChecklistItem(ctx, itemID)
	if err != nil {
		return err
	}
	ms, err := s.milestoneRepo.GetByID(ctx, actor.WorkspaceID, item.MilestoneID)
	if err != nil {
		return err
	}

	if !user.Privileged(actor.Role) {
		assigned, err := s.milestoneRepo.IsAssignee(ctx, ms.ID, actor.ID)
		if err != nil {
			return err
		}
		if !assigned {
			return workflow_errors.Permissionf("user %s is not assigned to milestone %s", actor.ID, ms.ID)
		}
	}

	now := s.clock()
	doneBy := uuid.NullUUID{}
	doneAt := sql.NullTime{}
	if done {
		doneBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		doneAt = sql.NullTime{Time: now, Valid: true}
	}

	return repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		if err := s.milestoneRepo.SetChecklistItemDone(ctx, tx, item.ID, done, doneBy, doneAt); err != nil {
			return err
		}
		if !done {
			return nil
		}
		return s.timelineRepo.Create(ctx, tx, &timeline.Entry{
			ID:          uuid.New(),
			ProjectID:   ms.ProjectID,
			MilestoneID: uuid.NullUUID{UUID: ms.ID, Valid: true},
			ActorID:     actor.ID,
			Kind:        timeline.KindChecklistItemDone,
			Message:     fmt.Sprintf("checklist item %q done", item.Title),
			CreatedAt:   now,
		})
	})
}

// SetMilestoneFlags updates the advisory blocked/failedCheck overlays.
func (s *WorkflowService) SetMilestoneFlags(ctx context.Context, actor Actor, milestoneID uuid.UUID, blocked, failedCheck bool) error {
	ms, err := s.milestoneRepo.GetByID(ctx, actor.WorkspaceID, milestoneID)
	if err != nil {
		return err
	}
	return s.milestoneRepo.UpdateFlags(ctx, nil, ms.ID, blocked, failedCheck)
}

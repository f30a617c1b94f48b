package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/events"
	"buildtrack/internal/repository"
	"buildtrack/pkg/logger"
)

// AutoCompletionHandler reacts to document_approved events. When every
// required requirement is approved and every required checklist item is
// done, it completes the milestone and emits the auto-completion event
// for the notification fan-out. Partial progress is a no-op, as is an
// already completed milestone, which makes redelivery safe.
type AutoCompletionHandler struct {
	workflow      *WorkflowService
	milestoneRepo repository.MilestoneRepository
	documentRepo  repository.DocumentRepository
	userRepo      repository.UserRepository
	outboxRepo    repository.OutboxRepository
	log           *logger.Logger
}

func NewAutoCompletionHandler(
	workflow *WorkflowService,
	milestoneRepo repository.MilestoneRepository,
	documentRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	outboxRepo repository.OutboxRepository,
	log *logger.Logger,
) *AutoCompletionHandler {
	return &AutoCompletionHandler{
		workflow:      workflow,
		milestoneRepo: milestoneRepo,
		documentRepo:  documentRepo,
		userRepo:      userRepo,
		outboxRepo:    outboxRepo,
		log:           log,
	}
}

func (h *AutoCompletionHandler) Handle(ctx context.Context, eventType string, payload interface{}) error {
	e, ok := payload.(*events.DocumentEvent)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	ms, err := h.milestoneRepo.GetByID(ctx, e.WorkspaceID, e.MilestoneID)
	if err != nil {
		return err
	}
	if ms.Status == milestone.StatusCompleted {
		return nil
	}

	reqs, err := h.documentRepo.ListRequirementsByMilestone(ctx, ms.ID)
	if err != nil {
		return err
	}
	for _, req := range reqs {
		if req.Required && req.State != document.StateApproved {
			return nil
		}
	}

	items, err := h.milestoneRepo.ListChecklistItems(ctx, ms.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Required && !item.Done {
			return nil
		}
	}

	actor := Actor{ID: e.ActorID, WorkspaceID: e.WorkspaceID}
	if err := h.workflow.ChangeMilestoneStatus(ctx, actor, ms.ID, milestone.StatusCompleted); err != nil {
		return err
	}
	if h.log != nil {
		h.log.Infof("milestone %s auto-completed after approval of document %s", ms.ID, e.DocumentID)
	}

	stakeholders, err := h.userRepo.ListByWorkspaceRoles(ctx, e.WorkspaceID, []user.Role{user.RoleOwner, user.RoleManager})
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(stakeholders))
	for _, u := range stakeholders {
		ids = append(ids, u.ID)
	}

	return appendOutboxEvent(ctx, h.outboxRepo, nil, events.EventTypeMilestoneAutoCompleted, events.MilestoneAutoCompletedEvent{
		MilestoneID:  ms.ID,
		ProjectID:    ms.ProjectID,
		WorkspaceID:  e.WorkspaceID,
		ApprovedBy:   e.ActorID,
		Stakeholders: ids,
	})
}

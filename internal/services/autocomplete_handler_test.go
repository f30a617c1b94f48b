package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/timeline"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/events"
)

type autoCompleteFixture struct {
	*workflowFixture
	users   *fakeUserRepo
	handler *AutoCompletionHandler
	owner   uuid.UUID
}

func newAutoCompleteFixture(t *testing.T) *autoCompleteFixture {
	t.Helper()
	f := &autoCompleteFixture{
		workflowFixture: newWorkflowFixture(t),
		users:           newFakeUserRepo(),
	}
	f.owner = uuid.New()
	require.NoError(t, f.users.Create(context.Background(), nil, &user.User{
		ID:          f.owner,
		WorkspaceID: f.workspaceID,
		Email:       "owner@example.com",
		Role:        user.RoleOwner,
		IsActive:    true,
	}))
	f.handler = NewAutoCompletionHandler(f.svc, f.milestones, f.documents, f.users, f.outbox, nil)
	return f
}

// approveRequirement uploads a document against the requirement and
// approves it, then returns the document_approved payload the outbox
// dispatcher would hand to the handler.
func (f *autoCompleteFixture) approveRequirement(t *testing.T, actor Actor, reqID uuid.UUID) *events.DocumentEvent {
	t.Helper()
	doc, err := f.svc.UploadDocument(context.Background(), actor, reqID, upload("plan.pdf", 1024))
	require.NoError(t, err)
	require.NoError(t, f.svc.ReviewDocument(context.Background(), actor, doc.ID, DecisionApprove, ""))

	approved := f.outbox.byType(events.EventTypeDocumentApproved)
	require.NotEmpty(t, approved)
	var e events.DocumentEvent
	require.NoError(t, json.Unmarshal(approved[len(approved)-1].Payload, &e))
	return &e
}

func TestAutoCompletionWaitsForAllRequiredApprovals(t *testing.T) {
	f := newAutoCompleteFixture(t)
	msID := f.seedMilestone(t, milestone.StatusInProgress)
	typeID := f.seedDocType(t, "pdf", 10<<20)
	firstReq := f.seedRequirement(t, msID, typeID, true)
	secondReq := f.seedRequirement(t, msID, typeID, true)
	actor := f.manager()

	e := f.approveRequirement(t, actor, firstReq)
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))

	ms, err := f.milestones.GetByID(context.Background(), f.workspaceID, msID)
	require.NoError(t, err)
	assert.Equal(t, milestone.StatusInProgress, ms.Status)
	assert.Empty(t, f.outbox.byType(events.EventTypeMilestoneAutoCompleted))

	e = f.approveRequirement(t, actor, secondReq)
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))

	ms, err = f.milestones.GetByID(context.Background(), f.workspaceID, msID)
	require.NoError(t, err)
	assert.Equal(t, milestone.StatusCompleted, ms.Status)
	assert.True(t, ms.CompletedAt.Valid)
	assert.Len(t, f.timelines.byKind(timeline.KindMilestoneStatusChanged), 1)

	completed := f.outbox.byType(events.EventTypeMilestoneAutoCompleted)
	require.Len(t, completed, 1)
	var payload events.MilestoneAutoCompletedEvent
	require.NoError(t, json.Unmarshal(completed[0].Payload, &payload))
	assert.Equal(t, msID, payload.MilestoneID)
	assert.Equal(t, actor.ID, payload.ApprovedBy)
	assert.Contains(t, payload.Stakeholders, f.owner)
}

func TestAutoCompletionIgnoresOptionalRequirements(t *testing.T) {
	f := newAutoCompleteFixture(t)
	msID := f.seedMilestone(t, milestone.StatusInProgress)
	typeID := f.seedDocType(t, "pdf", 10<<20)
	requiredReq := f.seedRequirement(t, msID, typeID, true)
	f.seedRequirement(t, msID, typeID, false)
	actor := f.manager()

	e := f.approveRequirement(t, actor, requiredReq)
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))

	ms, err := f.milestones.GetByID(context.Background(), f.workspaceID, msID)
	require.NoError(t, err)
	assert.Equal(t, milestone.StatusCompleted, ms.Status)
}

func TestAutoCompletionBlockedByRequiredChecklist(t *testing.T) {
	f := newAutoCompleteFixture(t)
	msID := f.seedMilestone(t, milestone.StatusInProgress)
	typeID := f.seedDocType(t, "pdf", 10<<20)
	reqID := f.seedRequirement(t, msID, typeID, true)
	itemID := uuid.New()
	require.NoError(t, f.milestones.CreateChecklistItem(context.Background(), nil, &milestone.ChecklistItem{
		ID:          itemID,
		MilestoneID: msID,
		Title:       "Site inspection",
		Required:    true,
	}))
	actor := f.manager()

	e := f.approveRequirement(t, actor, reqID)
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))

	ms, err := f.milestones.GetByID(context.Background(), f.workspaceID, msID)
	require.NoError(t, err)
	assert.Equal(t, milestone.StatusInProgress, ms.Status)

	require.NoError(t, f.svc.SetChecklistItemDone(context.Background(), actor, itemID, true))
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))

	ms, err = f.milestones.GetByID(context.Background(), f.workspaceID, msID)
	require.NoError(t, err)
	assert.Equal(t, milestone.StatusCompleted, ms.Status)
}

func TestAutoCompletionRedeliveryIsNoop(t *testing.T) {
	f := newAutoCompleteFixture(t)
	msID := f.seedMilestone(t, milestone.StatusInProgress)
	typeID := f.seedDocType(t, "pdf", 10<<20)
	reqID := f.seedRequirement(t, msID, typeID, true)
	actor := f.manager()

	e := f.approveRequirement(t, actor, reqID)
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))
	require.NoError(t, f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, e))

	assert.Len(t, f.outbox.byType(events.EventTypeMilestoneAutoCompleted), 1)
	assert.Len(t, f.timelines.byKind(timeline.KindMilestoneStatusChanged), 1)
}

func TestAutoCompletionRejectsUnexpectedPayload(t *testing.T) {
	f := newAutoCompleteFixture(t)

	err := f.handler.Handle(context.Background(), events.EventTypeDocumentApproved, &events.MilestoneStatusChangedEvent{})
	require.Error(t, err)
}

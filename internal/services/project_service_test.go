package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/user"
	workflow_errors "buildtrack/pkg/errors"
)

type projectFixture struct {
	projects   *fakeProjectRepo
	milestones *fakeMilestoneRepo
	documents  *fakeDocumentRepo
	timelines  *fakeTimelineRepo
	svc        *ProjectService

	workspaceID uuid.UUID
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	f := &projectFixture{
		projects:    newFakeProjectRepo(),
		milestones:  newFakeMilestoneRepo(),
		documents:   newFakeDocumentRepo(),
		timelines:   &fakeTimelineRepo{},
		workspaceID: uuid.New(),
	}
	f.svc = NewProjectService(fakeDB{}, f.projects, f.milestones, f.documents, f.timelines)
	f.svc.clock = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return f
}

func (f *projectFixture) owner() Actor {
	return Actor{ID: uuid.New(), WorkspaceID: f.workspaceID, Role: user.RoleOwner}
}

func TestCreateProjectFromTemplate(t *testing.T) {
	f := newProjectFixture(t)
	actor := f.owner()
	typeID := uuid.New()
	assignee := uuid.New()

	p, err := f.svc.CreateProject(context.Background(), actor, ProjectTemplate{
		Name:    "Harbor View Residences",
		Address: "12 Quay St",
		Milestones: []MilestoneTemplate{
			{
				Name: "Foundation",
				Requirements: []RequirementTemplate{
					{Name: "Structural plan", DocumentTypeID: typeID, Required: true},
					{Name: "Soil report", DocumentTypeID: typeID, Required: false},
				},
				Checklist: []ChecklistTemplate{{Title: "Pour inspection", Required: true}},
				Assignees: []uuid.UUID{assignee},
			},
			{Name: "Framing"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, f.workspaceID, p.WorkspaceID)
	assert.Equal(t, actor.ID, p.CreatedBy)

	detail, err := f.svc.GetProjectDetail(context.Background(), actor, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Milestones, 2)

	foundation := detail.Milestones[0]
	assert.Equal(t, "Foundation", foundation.Milestone.Name)
	assert.Equal(t, milestone.StatusNotStarted, foundation.Milestone.Status)
	require.Len(t, foundation.Requirements, 2)
	assert.Equal(t, document.StateNotProvided, foundation.Requirements[0].Requirement.State)
	assert.True(t, foundation.Requirements[0].Requirement.Required)
	require.Len(t, foundation.Checklist, 1)
	assert.Equal(t, []uuid.UUID{assignee}, foundation.Assignees)

	assert.Equal(t, "Framing", detail.Milestones[1].Milestone.Name)
	assert.Equal(t, 1, detail.Milestones[1].Milestone.Position)
}

func TestCreateProjectRequiresPrivilegedRole(t *testing.T) {
	f := newProjectFixture(t)
	actor := Actor{ID: uuid.New(), WorkspaceID: f.workspaceID, Role: user.RoleReviewer}

	_, err := f.svc.CreateProject(context.Background(), actor, ProjectTemplate{Name: "x"})
	require.ErrorIs(t, err, workflow_errors.ErrPermission)
}

func TestCreateProjectRequiresName(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.svc.CreateProject(context.Background(), f.owner(), ProjectTemplate{})
	require.ErrorIs(t, err, workflow_errors.ErrValidation)
}

func TestAddMilestoneAppendsAfterExisting(t *testing.T) {
	f := newProjectFixture(t)
	actor := f.owner()

	p, err := f.svc.CreateProject(context.Background(), actor, ProjectTemplate{
		Name:       "Harbor View Residences",
		Milestones: []MilestoneTemplate{{Name: "Foundation"}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.AddMilestone(context.Background(), actor, p.ID, MilestoneTemplate{Name: "Roofing"}))

	ms, err := f.milestones.ListByProject(context.Background(), f.workspaceID, p.ID)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Roofing", ms[1].Name)
	assert.Equal(t, 1, ms[1].Position)
}

func TestCreateDocumentTypeValidation(t *testing.T) {
	f := newProjectFixture(t)
	actor := f.owner()

	_, err := f.svc.CreateDocumentType(context.Background(), actor, document.DocumentType{Name: "Plan"})
	require.ErrorIs(t, err, workflow_errors.ErrValidation)

	dt, err := f.svc.CreateDocumentType(context.Background(), actor, document.DocumentType{
		Name:              "Plan",
		AllowedExtensions: "pdf",
		MaxSizeBytes:      1 << 20,
	})
	require.NoError(t, err)
	assert.Equal(t, f.workspaceID, dt.WorkspaceID)
	assert.NotEqual(t, uuid.Nil, dt.ID)
}

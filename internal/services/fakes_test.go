package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/outbox"
	"buildtrack/internal/domain/project"
	"buildtrack/internal/domain/timeline"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/repository"
	workflow_errors "buildtrack/pkg/errors"
)

// In-memory repository fakes. repository.WithTx hands any non-*sql.DB
// DBTX straight to the callback, so services run against these without
// a database.

type fakeDB struct{}

func (fakeDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (fakeDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (fakeDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*project.Project)}
}

func (r *fakeProjectRepo) Create(ctx context.Context, tx repository.DBTX, p *project.Project) error {
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (project.Project, error) {
	p, ok := r.projects[id]
	if !ok || p.WorkspaceID != workspaceID {
		return project.Project{}, workflow_errors.NotFoundf("project", id)
	}
	return *p, nil
}

func (r *fakeProjectRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]project.Project, error) {
	var out []project.Project
	for _, p := range r.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeMilestoneRepo struct {
	milestones map[uuid.UUID]*milestone.Milestone
	items      map[uuid.UUID]*milestone.ChecklistItem
	assignees  map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{
		milestones: make(map[uuid.UUID]*milestone.Milestone),
		items:      make(map[uuid.UUID]*milestone.ChecklistItem),
		assignees:  make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *fakeMilestoneRepo) Create(ctx context.Context, tx repository.DBTX, m *milestone.Milestone) error {
	cp := *m
	r.milestones[m.ID] = &cp
	return nil
}

func (r *fakeMilestoneRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (milestone.Milestone, error) {
	m, ok := r.milestones[id]
	if !ok || m.WorkspaceID != workspaceID {
		return milestone.Milestone{}, workflow_errors.NotFoundf("milestone", id)
	}
	return *m, nil
}

func (r *fakeMilestoneRepo) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]milestone.Milestone, error) {
	var out []milestone.Milestone
	for _, m := range r.milestones {
		if m.WorkspaceID == workspaceID && m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeMilestoneRepo) UpdateStatus(ctx context.Context, tx repository.DBTX, id uuid.UUID, status milestone.Status, completedAt sql.NullTime) error {
	m, ok := r.milestones[id]
	if !ok {
		return workflow_errors.NotFoundf("milestone", id)
	}
	m.Status = status
	m.CompletedAt = completedAt
	return nil
}

func (r *fakeMilestoneRepo) UpdateFlags(ctx context.Context, tx repository.DBTX, id uuid.UUID, blocked, failedCheck bool) error {
	m, ok := r.milestones[id]
	if !ok {
		return workflow_errors.NotFoundf("milestone", id)
	}
	m.Blocked = blocked
	m.FailedCheck = failedCheck
	return nil
}

func (r *fakeMilestoneRepo) CreateChecklistItem(ctx context.Context, tx repository.DBTX, item *milestone.ChecklistItem) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeMilestoneRepo) GetChecklistItem(ctx context.Context, id uuid.UUID) (milestone.ChecklistItem, error) {
	item, ok := r.items[id]
	if !ok {
		return milestone.ChecklistItem{}, workflow_errors.NotFoundf("checklist item", id)
	}
	return *item, nil
}

func (r *fakeMilestoneRepo) ListChecklistItems(ctx context.Context, milestoneID uuid.UUID) ([]milestone.ChecklistItem, error) {
	var out []milestone.ChecklistItem
	for _, item := range r.items {
		if item.MilestoneID == milestoneID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeMilestoneRepo) SetChecklistItemDone(ctx context.Context, tx repository.DBTX, id uuid.UUID, done bool, doneBy uuid.NullUUID, doneAt sql.NullTime) error {
	item, ok := r.items[id]
	if !ok {
		return workflow_errors.NotFoundf("checklist item", id)
	}
	item.Done = done
	item.DoneBy = doneBy
	item.DoneAt = doneAt
	return nil
}

func (r *fakeMilestoneRepo) AddAssignee(ctx context.Context, tx repository.DBTX, a milestone.Assignee) error {
	if r.assignees[a.MilestoneID] == nil {
		r.assignees[a.MilestoneID] = make(map[uuid.UUID]bool)
	}
	r.assignees[a.MilestoneID][a.UserID] = true
	return nil
}

func (r *fakeMilestoneRepo) IsAssignee(ctx context.Context, milestoneID, userID uuid.UUID) (bool, error) {
	return r.assignees[milestoneID][userID], nil
}

func (r *fakeMilestoneRepo) ListAssignees(ctx context.Context, milestoneID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id := range r.assignees[milestoneID] {
		out = append(out, id)
	}
	return out, nil
}

type fakeDocumentRepo struct {
	types        map[uuid.UUID]*document.DocumentType
	requirements map[uuid.UUID]*document.Requirement
	documents    map[uuid.UUID]*document.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		types:        make(map[uuid.UUID]*document.DocumentType),
		requirements: make(map[uuid.UUID]*document.Requirement),
		documents:    make(map[uuid.UUID]*document.Document),
	}
}

func (r *fakeDocumentRepo) CreateType(ctx context.Context, tx repository.DBTX, t *document.DocumentType) error {
	cp := *t
	r.types[t.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) GetType(ctx context.Context, workspaceID, id uuid.UUID) (document.DocumentType, error) {
	t, ok := r.types[id]
	if !ok || t.WorkspaceID != workspaceID {
		return document.DocumentType{}, workflow_errors.NotFoundf("document type", id)
	}
	return *t, nil
}

func (r *fakeDocumentRepo) CreateRequirement(ctx context.Context, tx repository.DBTX, req *document.Requirement) error {
	cp := *req
	r.requirements[req.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) GetRequirement(ctx context.Context, workspaceID, id uuid.UUID) (document.Requirement, error) {
	req, ok := r.requirements[id]
	if !ok || req.WorkspaceID != workspaceID {
		return document.Requirement{}, workflow_errors.NotFoundf("requirement", id)
	}
	return *req, nil
}

func (r *fakeDocumentRepo) ListRequirementsByMilestone(ctx context.Context, milestoneID uuid.UUID) ([]document.Requirement, error) {
	var out []document.Requirement
	for _, req := range r.requirements {
		if req.MilestoneID == milestoneID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeDocumentRepo) UpdateRequirementState(ctx context.Context, tx repository.DBTX, id uuid.UUID, state document.RequirementState, currentDocumentID uuid.NullUUID) error {
	req, ok := r.requirements[id]
	if !ok {
		return workflow_errors.NotFoundf("requirement", id)
	}
	req.State = state
	req.CurrentDocumentID = currentDocumentID
	return nil
}

func (r *fakeDocumentRepo) CreateDocument(ctx context.Context, tx repository.DBTX, d *document.Document) error {
	cp := *d
	r.documents[d.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) GetDocument(ctx context.Context, workspaceID, id uuid.UUID) (document.Document, error) {
	d, ok := r.documents[id]
	if !ok {
		return document.Document{}, workflow_errors.NotFoundf("document", id)
	}
	req, ok := r.requirements[d.RequirementID]
	if !ok || req.WorkspaceID != workspaceID {
		return document.Document{}, workflow_errors.NotFoundf("document", id)
	}
	return *d, nil
}

func (r *fakeDocumentRepo) ListDocumentsByRequirement(ctx context.Context, requirementID uuid.UUID) ([]document.Document, error) {
	var out []document.Document
	for _, d := range r.documents {
		if d.RequirementID == requirementID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *fakeDocumentRepo) CountVersions(ctx context.Context, tx repository.DBTX, requirementID uuid.UUID) (int, error) {
	n := 0
	for _, d := range r.documents {
		if d.RequirementID == requirementID {
			n++
		}
	}
	return n, nil
}

func (r *fakeDocumentRepo) UpdateDocumentReview(ctx context.Context, tx repository.DBTX, id uuid.UUID, status document.Status, reviewedBy uuid.UUID, reviewedAt time.Time, reason sql.NullString) error {
	d, ok := r.documents[id]
	if !ok {
		return workflow_errors.NotFoundf("document", id)
	}
	d.Status = status
	d.ReviewedBy = uuid.NullUUID{UUID: reviewedBy, Valid: true}
	d.ReviewedAt = sql.NullTime{Time: reviewedAt, Valid: true}
	d.RejectionReason = reason
	return nil
}

type fakeTimelineRepo struct {
	entries []timeline.Entry
}

func (r *fakeTimelineRepo) Create(ctx context.Context, tx repository.DBTX, e *timeline.Entry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeTimelineRepo) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID, limit int) ([]timeline.Entry, error) {
	var out []timeline.Entry
	for _, e := range r.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTimelineRepo) byKind(kind string) []timeline.Entry {
	var out []timeline.Entry
	for _, e := range r.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type fakeOutboxRepo struct {
	events []*outbox.IntegrationEvent
}

func (r *fakeOutboxRepo) Create(ctx context.Context, tx repository.DBTX, e *outbox.IntegrationEvent) error {
	cp := *e
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeOutboxRepo) PendingBatch(ctx context.Context, limit, maxAttempts int) ([]outbox.IntegrationEvent, error) {
	var out []outbox.IntegrationEvent
	for _, e := range r.events {
		if e.ProcessedAt == nil && e.Attempts < maxAttempts {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, e := range r.events {
		if e.ID == id {
			t := at
			e.ProcessedAt = &t
			return nil
		}
	}
	return workflow_errors.NotFoundf("event", id)
}

func (r *fakeOutboxRepo) RecordFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	for _, e := range r.events {
		if e.ID == id {
			e.Attempts++
			e.Error = sql.NullString{String: errMsg, Valid: true}
			return nil
		}
	}
	return workflow_errors.NotFoundf("event", id)
}

func (r *fakeOutboxRepo) List(ctx context.Context, onlyUnprocessed bool, limit int) ([]outbox.IntegrationEvent, error) {
	var out []outbox.IntegrationEvent
	for _, e := range r.events {
		if onlyUnprocessed && e.ProcessedAt != nil {
			continue
		}
		out = append(out, *e)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutboxRepo) byType(eventType string) []outbox.IntegrationEvent {
	var out []outbox.IntegrationEvent
	for _, e := range r.events {
		if e.EventType == eventType {
			out = append(out, *e)
		}
	}
	return out
}

type fakeUserRepo struct {
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, tx repository.DBTX, u *user.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, workflow_errors.NotFoundf("user", id)
	}
	return *u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return user.User{}, workflow_errors.NotFoundf("user", email)
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return workflow_errors.NotFoundf("user", id)
	}
	u.LastLoginAt = sql.NullTime{Time: at, Valid: true}
	return nil
}

func (r *fakeUserRepo) ListByWorkspaceRoles(ctx context.Context, workspaceID uuid.UUID, roles []user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if u.WorkspaceID != workspaceID {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/project"
	"buildtrack/internal/domain/timeline"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/repository"
	workflow_errors "buildtrack/pkg/errors"
)

// Template types describe a project's initial structure. Milestones,
// requirements and checklist items are created together with the
// project in one transaction.

type RequirementTemplate struct {
	Name           string
	DocumentTypeID uuid.UUID
	Required       bool
}

type ChecklistTemplate struct {
	Title    string
	Required bool
}

type MilestoneTemplate struct {
	Name         string
	Requirements []RequirementTemplate
	Checklist    []ChecklistTemplate
	Assignees    []uuid.UUID
}

type ProjectTemplate struct {
	Name       string
	Address    string
	Milestones []MilestoneTemplate
}

// MilestoneDetail is the read model for display.
type MilestoneDetail struct {
	Milestone    milestone.Milestone
	Requirements []RequirementDetail
	Checklist    []milestone.ChecklistItem
	Assignees    []uuid.UUID
}

type RequirementDetail struct {
	Requirement document.Requirement
	Documents   []document.Document
}

type ProjectDetail struct {
	Project    project.Project
	Milestones []MilestoneDetail
}

type ProjectService struct {
	db            repository.DBTX
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
	documentRepo  repository.DocumentRepository
	timelineRepo  repository.TimelineRepository
	clock         func() time.Time
}

func NewProjectService(
	db repository.DBTX,
	projectRepo repository.ProjectRepository,
	milestoneRepo repository.MilestoneRepository,
	documentRepo repository.DocumentRepository,
	timelineRepo repository.TimelineRepository,
) *ProjectService {
	return &ProjectService{
		db:            db,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		documentRepo:  documentRepo,
		timelineRepo:  timelineRepo,
		clock:         time.Now,
	}
}

// CreateProject instantiates a project with its milestones from a
// template.
func (s *ProjectService) CreateProject(ctx context.Context, actor Actor, tpl ProjectTemplate) (project.Project, error) {
	if !user.CanManageAutomation(actor.Role) {
		return project.Project{}, workflow_errors.Permissionf("role %s cannot create projects", actor.Role)
	}
	if tpl.Name == "" {
		return project.Project{}, workflow_errors.Validationf("project name is required")
	}

	now := s.clock()
	p := project.Project{
		ID:          uuid.New(),
		WorkspaceID: actor.WorkspaceID,
		Name:        tpl.Name,
		Address:     tpl.Address,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		if err := s.projectRepo.Create(ctx, tx, &p); err != nil {
			return err
		}
		for i, mt := range tpl.Milestones {
			if err := s.createMilestone(ctx, tx, actor, p.ID, i, mt, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

// AddMilestone appends a custom milestone to an existing project.
func (s *ProjectService) AddMilestone(ctx context.Context, actor Actor, projectID uuid.UUID, tpl MilestoneTemplate) error {
	if !user.CanManageAutomation(actor.Role) {
		return workflow_errors.Permissionf("role %s cannot add milestones", actor.Role)
	}
	p, err := s.projectRepo.GetByID(ctx, actor.WorkspaceID, projectID)
	if err != nil {
		return err
	}
	existing, err := s.milestoneRepo.ListByProject(ctx, actor.WorkspaceID, p.ID)
	if err != nil {
		return err
	}
	now := s.clock()
	return repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		return s.createMilestone(ctx, tx, actor, p.ID, len(existing), tpl, now)
	})
}

func (s *ProjectService) createMilestone(ctx context.Context, tx repository.DBTX, actor Actor, projectID uuid.UUID, position int, tpl MilestoneTemplate, now time.Time) error {
	if tpl.Name == "" {
		return workflow_errors.Validationf("milestone name is required")
	}
	m := milestone.Milestone{
		ID:          uuid.New(),
		ProjectID:   projectID,
		WorkspaceID: actor.WorkspaceID,
		Name:        tpl.Name,
		Position:    position,
		Status:      milestone.StatusNotStarted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.milestoneRepo.Create(ctx, tx, &m); err != nil {
		return err
	}
	for i, rt := range tpl.Requirements {
		req := document.Requirement{
			ID:             uuid.New(),
			MilestoneID:    m.ID,
			WorkspaceID:    actor.WorkspaceID,
			DocumentTypeID: rt.DocumentTypeID,
			Name:           rt.Name,
			Required:       rt.Required,
			State:          document.StateNotProvided,
			Position:       i,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.documentRepo.CreateRequirement(ctx, tx, &req); err != nil {
			return err
		}
	}
	for i, ct := range tpl.Checklist {
		item := milestone.ChecklistItem{
			ID:          uuid.New(),
			MilestoneID: m.ID,
			Title:       ct.Title,
			Required:    ct.Required,
			Position:    i,
		}
		if err := s.milestoneRepo.CreateChecklistItem(ctx, tx, &item); err != nil {
			return err
		}
	}
	for _, userID := range tpl.Assignees {
		if err := s.milestoneRepo.AddAssignee(ctx, tx, milestone.Assignee{MilestoneID: m.ID, UserID: userID}); err != nil {
			return err
		}
	}
	return nil
}

// GetProjectDetail assembles the full read model for display.
func (s *ProjectService) GetProjectDetail(ctx context.Context, actor Actor, projectID uuid.UUID) (ProjectDetail, error) {
	p, err := s.projectRepo.GetByID(ctx, actor.WorkspaceID, projectID)
	if err != nil {
		return ProjectDetail{}, err
	}
	milestones, err := s.milestoneRepo.ListByProject(ctx, actor.WorkspaceID, p.ID)
	if err != nil {
		return ProjectDetail{}, err
	}

	detail := ProjectDetail{Project: p}
	for _, m := range milestones {
		md := MilestoneDetail{Milestone: m}
		reqs, err := s.documentRepo.ListRequirementsByMilestone(ctx, m.ID)
		if err != nil {
			return ProjectDetail{}, err
		}
		for _, req := range reqs {
			docs, err := s.documentRepo.ListDocumentsByRequirement(ctx, req.ID)
			if err != nil {
				return ProjectDetail{}, err
			}
			md.Requirements = append(md.Requirements, RequirementDetail{Requirement: req, Documents: docs})
		}
		if md.Checklist, err = s.milestoneRepo.ListChecklistItems(ctx, m.ID); err != nil {
			return ProjectDetail{}, err
		}
		if md.Assignees, err = s.milestoneRepo.ListAssignees(ctx, m.ID); err != nil {
			return ProjectDetail{}, err
		}
		detail.Milestones = append(detail.Milestones, md)
	}
	return detail, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, actor Actor) ([]project.Project, error) {
	return s.projectRepo.ListByWorkspace(ctx, actor.WorkspaceID)
}

func (s *ProjectService) ListTimeline(ctx context.Context, actor Actor, projectID uuid.UUID, limit int) ([]timeline.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.timelineRepo.ListByProject(ctx, actor.WorkspaceID, projectID, limit)
}

// CreateDocumentType registers an upload policy for the workspace.
func (s *ProjectService) CreateDocumentType(ctx context.Context, actor Actor, t document.DocumentType) (document.DocumentType, error) {
	if !user.CanManageAutomation(actor.Role) {
		return document.DocumentType{}, workflow_errors.Permissionf("role %s cannot manage document types", actor.Role)
	}
	if t.Name == "" || t.AllowedExtensions == "" || t.MaxSizeBytes <= 0 {
		return document.DocumentType{}, workflow_errors.Validationf("document type needs a name, allowed extensions and a positive max size")
	}
	t.ID = uuid.New()
	t.WorkspaceID = actor.WorkspaceID
	if err := s.documentRepo.CreateType(ctx, nil, &t); err != nil {
		return document.DocumentType{}, err
	}
	return t, nil
}

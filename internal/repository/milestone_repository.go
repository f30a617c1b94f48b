package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/milestone"
	workflow_errors "buildtrack/pkg/errors"
)

type milestoneRepository struct {
	db DBTX
}

func NewMilestoneRepository(db DBTX) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) Create(ctx context.Context, tx DBTX, m *milestone.Milestone) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO milestones (id, project_id, workspace_id, name, position, status, blocked, failed_check, completed_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `,
		m.ID,
		m.ProjectID,
		m.WorkspaceID,
		m.Name,
		m.Position,
		m.Status,
		m.Blocked,
		m.FailedCheck,
		m.CompletedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *milestoneRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (milestone.Milestone, error) {
	var m milestone.Milestone
	err := r.db.QueryRowContext(ctx, `
        SELECT id, project_id, workspace_id, name, position, status, blocked, failed_check, completed_at, created_at, updated_at
        FROM milestones
        WHERE workspace_id = $1 AND id = $2
    `, workspaceID, id).Scan(
		&m.ID,
		&m.ProjectID,
		&m.WorkspaceID,
		&m.Name,
		&m.Position,
		&m.Status,
		&m.Blocked,
		&m.FailedCheck,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return milestone.Milestone{}, workflow_errors.NotFoundf("milestone", id)
	}
	return m, err
}

func (r *milestoneRepository) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]milestone.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, project_id, workspace_id, name, position, status, blocked, failed_check, completed_at, created_at, updated_at
        FROM milestones
        WHERE workspace_id = $1 AND project_id = $2
        ORDER BY position ASC
    `, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []milestone.Milestone
	for rows.Next() {
		var m milestone.Milestone
		if err := rows.Scan(
			&m.ID,
			&m.ProjectID,
			&m.WorkspaceID,
			&m.Name,
			&m.Position,
			&m.Status,
			&m.Blocked,
			&m.FailedCheck,
			&m.CompletedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *milestoneRepository) UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status milestone.Status, completedAt sql.NullTime) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        UPDATE milestones
        SET status = $1, completed_at = $2, updated_at = $3
        WHERE id = $4
    `, status, completedAt, time.Now(), id)
	return err
}

func (r *milestoneRepository) UpdateFlags(ctx context.Context, tx DBTX, id uuid.UUID, blocked, failedCheck bool) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        UPDATE milestones
        SET blocked = $1, failed_check = $2, updated_at = $3
        WHERE id = $4
    `, blocked, failedCheck, time.Now(), id)
	return err
}

func (r *milestoneRepository) CreateChecklistItem(ctx context.Context, tx DBTX, item *milestone.ChecklistItem) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO checklist_items (id, milestone_id, title, required, done, position, done_by, done_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `,
		item.ID,
		item.MilestoneID,
		item.Title,
		item.Required,
		item.Done,
		item.Position,
		item.DoneBy,
		item.DoneAt,
	)
	return err
}

func (r *milestoneRepository) GetChecklistItem(ctx context.Context, id uuid.UUID) (milestone.ChecklistItem, error) {
	var item milestone.ChecklistItem
	err := r.db.QueryRowContext(ctx, `
        SELECT id, milestone_id, title, required, done, position, done_by, done_at
        FROM checklist_items
        WHERE id = $1
    `, id).Scan(
		&item.ID,
		&item.MilestoneID,
		&item.Title,
		&item.Required,
		&item.Done,
		&item.Position,
		&item.DoneBy,
		&item.DoneAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return milestone.ChecklistItem{}, workflow_errors.NotFoundf("checklist item", id)
	}
	return item, err
}

func (r *milestoneRepository) ListChecklistItems(ctx context.Context, milestoneID uuid.UUID) ([]milestone.ChecklistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, milestone_id, title, required, done, position, done_by, done_at
        FROM checklist_items
        WHERE milestone_id = $1
        ORDER BY position ASC
    `, milestoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []milestone.ChecklistItem
	for rows.Next() {
		var item milestone.ChecklistItem
		if err := rows.Scan(
			&item.ID,
			&item.MilestoneID,
			&item.Title,
			&item.Required,
			&item.Done,
			&item.Position,
			&item.DoneBy,
			&item.DoneAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *milestoneRepository) SetChecklistItemDone(ctx context.Context, tx DBTX, id uuid.UUID, done bool, doneBy uuid.NullUUID, doneAt sql.NullTime) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        UPDATE checklist_items
        SET done = $1, done_by = $2, done_at = $3
        WHERE id = $4
    `, done, doneBy, doneAt, id)
	return err
}

func (r *milestoneRepository) AddAssignee(ctx context.Context, tx DBTX, a milestone.Assignee) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO milestone_assignees (milestone_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, a.MilestoneID, a.UserID)
	return err
}

func (r *milestoneRepository) IsAssignee(ctx context.Context, milestoneID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS(SELECT 1 FROM milestone_assignees WHERE milestone_id = $1 AND user_id = $2)
    `, milestoneID, userID).Scan(&exists)
	return exists, err
}

func (r *milestoneRepository) ListAssignees(ctx context.Context, milestoneID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id FROM milestone_assignees WHERE milestone_id = $1
    `, milestoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

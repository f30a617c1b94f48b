package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"buildtrack/internal/domain/project"
	workflow_errors "buildtrack/pkg/errors"
)

type projectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, tx DBTX, p *project.Project) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO projects (id, workspace_id, name, address, created_by, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `,
		p.ID,
		p.WorkspaceID,
		p.Name,
		p.Address,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return workflow_errors.ErrAlreadyExists
	}
	return err
}

func (r *projectRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (project.Project, error) {
	var p project.Project
	err := r.db.QueryRowContext(ctx, `
        SELECT id, workspace_id, name, address, created_by, created_at, updated_at
        FROM projects
        WHERE workspace_id = $1 AND id = $2
    `, workspaceID, id).Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.Name,
		&p.Address,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, workflow_errors.NotFoundf("project", id)
	}
	return p, err
}

func (r *projectRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]project.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, workspace_id, name, address, created_by, created_at, updated_at
        FROM projects
        WHERE workspace_id = $1
        ORDER BY created_at ASC
    `, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(
			&p.ID,
			&p.WorkspaceID,
			&p.Name,
			&p.Address,
			&p.CreatedBy,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

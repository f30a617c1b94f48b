package repository

import (
	"context"

	"github.com/google/uuid"

	"buildtrack/internal/domain/timeline"
)

type timelineRepository struct {
	db DBTX
}

func NewTimelineRepository(db DBTX) TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Create(ctx context.Context, tx DBTX, e *timeline.Entry) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO timeline_entries (id, project_id, milestone_id, actor_id, kind, message, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `,
		e.ID,
		e.ProjectID,
		e.MilestoneID,
		e.ActorID,
		e.Kind,
		e.Message,
		e.CreatedAt,
	)
	return err
}

func (r *timelineRepository) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID, limit int) ([]timeline.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT t.id, t.project_id, t.milestone_id, t.actor_id, t.kind, t.message, t.created_at
        FROM timeline_entries t
        JOIN projects p ON p.id = t.project_id
        WHERE p.workspace_id = $1 AND t.project_id = $2
        ORDER BY t.created_at DESC
        LIMIT $3
    `, workspaceID, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timeline.Entry
	for rows.Next() {
		var e timeline.Entry
		if err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.MilestoneID,
			&e.ActorID,
			&e.Kind,
			&e.Message,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/outbox"
)

type outboxRepository struct {
	db DBTX
}

func NewOutboxRepository(db DBTX) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, tx DBTX, e *outbox.IntegrationEvent) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO integration_events (id, event_type, payload, attempts, error, created_at, processed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `,
		e.ID,
		e.EventType,
		e.Payload,
		e.Attempts,
		e.Error,
		e.CreatedAt,
		e.ProcessedAt,
	)
	return err
}

// PendingBatch selects the oldest unprocessed events below the attempt
// ceiling. The ceiling lives in the WHERE clause so poisoned rows are
// excluded at selection time. A horizontally scaled dispatcher would
// need FOR UPDATE SKIP LOCKED here; single-dispatcher deployments don't.
func (r *outboxRepository) PendingBatch(ctx context.Context, limit, maxAttempts int) ([]outbox.IntegrationEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, event_type, payload, attempts, error, created_at, processed_at
        FROM integration_events
        WHERE processed_at IS NULL AND attempts < $1
        ORDER BY created_at ASC
        LIMIT $2
    `, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE integration_events
        SET processed_at = $1
        WHERE id = $2 AND processed_at IS NULL
    `, at, id)
	return err
}

func (r *outboxRepository) RecordFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE integration_events
        SET attempts = attempts + 1, error = $1
        WHERE id = $2 AND processed_at IS NULL
    `, errMsg, id)
	return err
}

func (r *outboxRepository) List(ctx context.Context, onlyUnprocessed bool, limit int) ([]outbox.IntegrationEvent, error) {
	query := `
        SELECT id, event_type, payload, attempts, error, created_at, processed_at
        FROM integration_events
    `
	if onlyUnprocessed {
		query += ` WHERE processed_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]outbox.IntegrationEvent, error) {
	var events []outbox.IntegrationEvent
	for rows.Next() {
		var e outbox.IntegrationEvent
		if err := rows.Scan(
			&e.ID,
			&e.EventType,
			&e.Payload,
			&e.Attempts,
			&e.Error,
			&e.CreatedAt,
			&e.ProcessedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

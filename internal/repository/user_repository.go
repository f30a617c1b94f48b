package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/user"
	workflow_errors "buildtrack/pkg/errors"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, tx DBTX, u *user.User) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO users (id, workspace_id, email, full_name, password_hash, role, is_active, created_at, last_login_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `,
		u.ID,
		u.WorkspaceID,
		u.Email,
		u.FullName,
		u.PasswordHash,
		u.Role,
		u.IsActive,
		u.CreatedAt,
		u.LastLoginAt,
	)
	if isUniqueViolation(err) {
		return workflow_errors.ErrAlreadyExists
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var u user.User
	err := r.db.QueryRowContext(ctx, `
        SELECT id, workspace_id, email, full_name, password_hash, role, is_active, created_at, last_login_at
        FROM users `+where, arg).Scan(
		&u.ID,
		&u.WorkspaceID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, workflow_errors.ErrNotFound
	}
	return u, err
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE users SET last_login_at = $1 WHERE id = $2
    `, at, id)
	return err
}

func (r *userRepository) ListByWorkspaceRoles(ctx context.Context, workspaceID uuid.UUID, roles []user.Role) ([]user.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	args := []interface{}{workspaceID}
	for _, role := range roles {
		args = append(args, role)
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, workspace_id, email, full_name, password_hash, role, is_active, created_at, last_login_at
        FROM users
        WHERE workspace_id = $1 AND is_active AND role IN (`+buildPlaceholders(2, len(roles))+`)
    `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID,
			&u.WorkspaceID,
			&u.Email,
			&u.FullName,
			&u.PasswordHash,
			&u.Role,
			&u.IsActive,
			&u.CreatedAt,
			&u.LastLoginAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

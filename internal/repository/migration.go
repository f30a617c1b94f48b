package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates extensions, enums and tables. Statements are
// written to be re-runnable.
func InitSchema(ctx context.Context, db *sql.DB) error {
	extensions := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	}

	for _, ext := range extensions {
		if _, err := db.ExecContext(ctx, ext); err != nil {
			return fmt.Errorf("failed to create extension: %w", err)
		}
	}

	// 'DO $$ BEGIN ... END $$' blocks create types only if they don't exist.
	enums := []string{
		`DO $$ BEGIN
			CREATE TYPE user_role AS ENUM ('OWNER', 'MANAGER', 'REVIEWER', 'CONTRIBUTOR');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			CREATE TYPE milestone_status AS ENUM ('NOT_STARTED', 'IN_PROGRESS', 'PENDING_REVIEW', 'COMPLETED', 'BLOCKED');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			CREATE TYPE requirement_state AS ENUM ('NOT_PROVIDED', 'PENDING_REVIEW', 'APPROVED', 'REJECTED');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			CREATE TYPE document_status AS ENUM ('PENDING', 'APPROVED', 'REJECTED');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
	}

	for _, enum := range enums {
		if _, err := db.ExecContext(ctx, enum); err != nil {
			return fmt.Errorf("failed to create enum: %w", err)
		}
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role user_role NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			workspace_id UUID NOT NULL,
			name TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			status milestone_status NOT NULL DEFAULT 'NOT_STARTED',
			blocked BOOLEAN NOT NULL DEFAULT FALSE,
			failed_check BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS milestone_assignees (
			milestone_id UUID NOT NULL REFERENCES milestones(id),
			user_id UUID NOT NULL REFERENCES users(id),
			PRIMARY KEY (milestone_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS checklist_items (
			id UUID PRIMARY KEY,
			milestone_id UUID NOT NULL REFERENCES milestones(id),
			title TEXT NOT NULL,
			required BOOLEAN NOT NULL DEFAULT TRUE,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			position INT NOT NULL DEFAULT 0,
			done_by UUID,
			done_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS document_types (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			name TEXT NOT NULL,
			allowed_extensions TEXT NOT NULL,
			max_size_bytes BIGINT NOT NULL,
			approver_role user_role NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS document_requirements (
			id UUID PRIMARY KEY,
			milestone_id UUID NOT NULL REFERENCES milestones(id),
			workspace_id UUID NOT NULL,
			document_type_id UUID NOT NULL REFERENCES document_types(id),
			name TEXT NOT NULL,
			required BOOLEAN NOT NULL DEFAULT TRUE,
			state requirement_state NOT NULL DEFAULT 'NOT_PROVIDED',
			current_document_id UUID,
			position INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			requirement_id UUID NOT NULL REFERENCES document_requirements(id),
			version INT NOT NULL,
			storage_key TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_size BIGINT NOT NULL,
			status document_status NOT NULL DEFAULT 'PENDING',
			uploaded_by UUID NOT NULL REFERENCES users(id),
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			reviewed_by UUID,
			reviewed_at TIMESTAMPTZ,
			rejection_reason TEXT,
			UNIQUE (requirement_id, version)
		);`,
		`CREATE TABLE IF NOT EXISTS timeline_entries (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			milestone_id UUID,
			actor_id UUID NOT NULL,
			kind TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS integration_events (
			id UUID PRIMARY KEY,
			event_type VARCHAR(50) NOT NULL,
			payload JSONB NOT NULL,
			attempts INT NOT NULL DEFAULT 0,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			processed_at TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS idx_integration_events_pending
			ON integration_events (created_at) WHERE processed_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones (project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_requirements_milestone ON document_requirements (milestone_id);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_requirement ON documents (requirement_id);`,
		`CREATE INDEX IF NOT EXISTS idx_timeline_project ON timeline_entries (project_id, created_at);`,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

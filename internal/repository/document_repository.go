package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	workflow_errors "buildtrack/pkg/errors"
)

type documentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) CreateType(ctx context.Context, tx DBTX, t *document.DocumentType) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO document_types (id, workspace_id, name, allowed_extensions, max_size_bytes, approver_role)
        VALUES ($1,$2,$3,$4,$5,$6)
    `,
		t.ID,
		t.WorkspaceID,
		t.Name,
		t.AllowedExtensions,
		t.MaxSizeBytes,
		t.ApproverRole,
	)
	return err
}

func (r *documentRepository) GetType(ctx context.Context, workspaceID, id uuid.UUID) (document.DocumentType, error) {
	var t document.DocumentType
	err := r.db.QueryRowContext(ctx, `
        SELECT id, workspace_id, name, allowed_extensions, max_size_bytes, approver_role
        FROM document_types
        WHERE workspace_id = $1 AND id = $2
    `, workspaceID, id).Scan(
		&t.ID,
		&t.WorkspaceID,
		&t.Name,
		&t.AllowedExtensions,
		&t.MaxSizeBytes,
		&t.ApproverRole,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return document.DocumentType{}, workflow_errors.NotFoundf("document type", id)
	}
	return t, err
}

func (r *documentRepository) CreateRequirement(ctx context.Context, tx DBTX, req *document.Requirement) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO document_requirements (id, milestone_id, workspace_id, document_type_id, name, required, state, current_document_id, position, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `,
		req.ID,
		req.MilestoneID,
		req.WorkspaceID,
		req.DocumentTypeID,
		req.Name,
		req.Required,
		req.State,
		req.CurrentDocumentID,
		req.Position,
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

func (r *documentRepository) GetRequirement(ctx context.Context, workspaceID, id uuid.UUID) (document.Requirement, error) {
	var req document.Requirement
	err := r.db.QueryRowContext(ctx, `
        SELECT id, milestone_id, workspace_id, document_type_id, name, required, state, current_document_id, position, created_at, updated_at
        FROM document_requirements
        WHERE workspace_id = $1 AND id = $2
    `, workspaceID, id).Scan(
		&req.ID,
		&req.MilestoneID,
		&req.WorkspaceID,
		&req.DocumentTypeID,
		&req.Name,
		&req.Required,
		&req.State,
		&req.CurrentDocumentID,
		&req.Position,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Requirement{}, workflow_errors.NotFoundf("requirement", id)
	}
	return req, err
}

func (r *documentRepository) ListRequirementsByMilestone(ctx context.Context, milestoneID uuid.UUID) ([]document.Requirement, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, milestone_id, workspace_id, document_type_id, name, required, state, current_document_id, position, created_at, updated_at
        FROM document_requirements
        WHERE milestone_id = $1
        ORDER BY position ASC
    `, milestoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []document.Requirement
	for rows.Next() {
		var req document.Requirement
		if err := rows.Scan(
			&req.ID,
			&req.MilestoneID,
			&req.WorkspaceID,
			&req.DocumentTypeID,
			&req.Name,
			&req.Required,
			&req.State,
			&req.CurrentDocumentID,
			&req.Position,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *documentRepository) UpdateRequirementState(ctx context.Context, tx DBTX, id uuid.UUID, state document.RequirementState, currentDocumentID uuid.NullUUID) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        UPDATE document_requirements
        SET state = $1, current_document_id = $2, updated_at = $3
        WHERE id = $4
    `, state, currentDocumentID, time.Now(), id)
	return err
}

func (r *documentRepository) CreateDocument(ctx context.Context, tx DBTX, d *document.Document) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO documents (id, requirement_id, version, storage_key, file_name, file_size, status, uploaded_by, uploaded_at, reviewed_by, reviewed_at, rejection_reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `,
		d.ID,
		d.RequirementID,
		d.Version,
		d.StorageKey,
		d.FileName,
		d.FileSize,
		d.Status,
		d.UploadedBy,
		d.UploadedAt,
		d.ReviewedBy,
		d.ReviewedAt,
		d.RejectionReason,
	)
	if isUniqueViolation(err) {
		return workflow_errors.ErrConflict
	}
	return err
}

func (r *documentRepository) GetDocument(ctx context.Context, workspaceID, id uuid.UUID) (document.Document, error) {
	var d document.Document
	err := r.db.QueryRowContext(ctx, `
        SELECT d.id, d.requirement_id, d.version, d.storage_key, d.file_name, d.file_size, d.status, d.uploaded_by, d.uploaded_at, d.reviewed_by, d.reviewed_at, d.rejection_reason
        FROM documents d
        JOIN document_requirements r ON r.id = d.requirement_id
        WHERE r.workspace_id = $1 AND d.id = $2
    `, workspaceID, id).Scan(
		&d.ID,
		&d.RequirementID,
		&d.Version,
		&d.StorageKey,
		&d.FileName,
		&d.FileSize,
		&d.Status,
		&d.UploadedBy,
		&d.UploadedAt,
		&d.ReviewedBy,
		&d.ReviewedAt,
		&d.RejectionReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, workflow_errors.NotFoundf("document", id)
	}
	return d, err
}

func (r *documentRepository) ListDocumentsByRequirement(ctx context.Context, requirementID uuid.UUID) ([]document.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, requirement_id, version, storage_key, file_name, file_size, status, uploaded_by, uploaded_at, reviewed_by, reviewed_at, rejection_reason
        FROM documents
        WHERE requirement_id = $1
        ORDER BY version ASC
    `, requirementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var d document.Document
		if err := rows.Scan(
			&d.ID,
			&d.RequirementID,
			&d.Version,
			&d.StorageKey,
			&d.FileName,
			&d.FileSize,
			&d.Status,
			&d.UploadedBy,
			&d.UploadedAt,
			&d.ReviewedBy,
			&d.ReviewedAt,
			&d.RejectionReason,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountVersions runs inside the upload transaction so version numbers
// stay dense under concurrent uploads (the unique index on
// (requirement_id, version) backstops it).
func (r *documentRepository) CountVersions(ctx context.Context, tx DBTX, requirementID uuid.UUID) (int, error) {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	var count int
	err := execDB.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM documents WHERE requirement_id = $1
    `, requirementID).Scan(&count)
	return count, err
}

func (r *documentRepository) UpdateDocumentReview(ctx context.Context, tx DBTX, id uuid.UUID, status document.Status, reviewedBy uuid.UUID, reviewedAt time.Time, reason sql.NullString) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        UPDATE documents
        SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4
        WHERE id = $5
    `, status, reviewedBy, reviewedAt, reason, id)
	return err
}

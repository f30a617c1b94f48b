package httpdto

import "github.com/google/uuid"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UploadDocumentRequest struct {
	FileName string `json:"file_name" binding:"required"`
	FileSize int64  `json:"file_size" binding:"required"`
}

type ReviewDocumentRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

type ChangeMilestoneStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type MilestoneFlagsRequest struct {
	Blocked     bool `json:"blocked"`
	FailedCheck bool `json:"failed_check"`
}

type ChecklistItemDoneRequest struct {
	Done bool `json:"done"`
}

type RequirementTemplateRequest struct {
	Name           string    `json:"name" binding:"required"`
	DocumentTypeID uuid.UUID `json:"document_type_id" binding:"required"`
	Required       bool      `json:"required"`
}

type ChecklistTemplateRequest struct {
	Title    string `json:"title" binding:"required"`
	Required bool   `json:"required"`
}

type MilestoneTemplateRequest struct {
	Name         string                       `json:"name" binding:"required"`
	Requirements []RequirementTemplateRequest `json:"requirements"`
	Checklist    []ChecklistTemplateRequest   `json:"checklist"`
	Assignees    []uuid.UUID                  `json:"assignees"`
}

type CreateProjectRequest struct {
	Name       string                     `json:"name" binding:"required"`
	Address    string                     `json:"address"`
	Milestones []MilestoneTemplateRequest `json:"milestones"`
}

type CreateDocumentTypeRequest struct {
	Name              string `json:"name" binding:"required"`
	AllowedExtensions string `json:"allowed_extensions" binding:"required"`
	MaxSizeBytes      int64  `json:"max_size_bytes" binding:"required"`
	ApproverRole      string `json:"approver_role" binding:"required"`
}

type UploadDocumentResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	Version    int       `json:"version"`
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url,omitempty"`
}

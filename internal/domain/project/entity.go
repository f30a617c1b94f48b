package project

import (
	"time"

	"github.com/google/uuid"
)

// Project represents the projects table
type Project struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Address     string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

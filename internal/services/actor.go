package services

import (
	"github.com/google/uuid"

	"buildtrack/internal/domain/user"
)

// Actor is the authenticated identity an operation runs as. Workspace
// scoping is carried here explicitly and threaded into every
// repository call.
type Actor struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Role        user.Role
}

package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role is the workspace-wide role of an account.
type Role string

const (
	RoleOwner       Role = "OWNER"
	RoleManager     Role = "MANAGER"
	RoleReviewer    Role = "REVIEWER"
	RoleContributor Role = "CONTRIBUTOR"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	WorkspaceID  uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Privileged reports whether the role bypasses milestone assignment checks.
func Privileged(r Role) bool {
	return r == RoleOwner || r == RoleManager
}

// CanReview reports whether the role may approve or reject documents.
// Contributors, the lowest role, cannot.
func CanReview(r Role) bool {
	return r != RoleContributor
}

// CanManageAutomation reports whether the role may change milestone
// status by hand.
func CanManageAutomation(r Role) bool {
	return r == RoleOwner || r == RoleManager
}

package domain

import "time"

// Role is the closed set of portal roles.
type Role string

const (
	RoleClientViewerPending Role = "CLIENT_VIEWER_PENDING"
	RoleClientViewer        Role = "CLIENT_VIEWER"
	RoleWorker              Role = "WORKER"
	RoleAdmin               Role = "ADMIN"
	RoleSuperAdmin          Role = "SUPER_ADMIN"
)

// KnownRole reports whether r is one of the closed enumeration values.
func KnownRole(r Role) bool {
	switch r {
	case RoleClientViewerPending, RoleClientViewer, RoleWorker, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User models an authenticated actor in the system. The payment subsystem
// only ever promotes CLIENT_VIEWER_PENDING to CLIENT_VIEWER, never demotes.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

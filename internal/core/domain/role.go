package domain

import "time"

// Well-known roles. Role names are convention-prefixed with "ROLE_";
// nothing in the core enforces the prefix, it is an operator convention.
const (
	RoleUser       = "ROLE_USER"
	RoleManager    = "ROLE_MANAGER"
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)

// Role is a named grant shared by reference across users. The name is the
// unique, immutable key; two users holding "ROLE_ADMIN" hold the same role.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

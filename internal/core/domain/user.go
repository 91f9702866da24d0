package domain

import "time"

// User models an authenticated actor. The role set is always fully
// materialized: a loaded User carries every role it holds, never a lazy
// reference into the store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user currently holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// AddRole appends the role only if it is not already present, preserving
// set semantics on the role list.
func (u *User) AddRole(role Role) {
	if u.HasRole(role.Name) {
		return
	}
	u.Roles = append(u.Roles, role)
}

// RoleNames returns a fresh snapshot of the user's role names. The slice
// shares no storage with the user's role set, so callers may retain it.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

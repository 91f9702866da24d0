package domain

import "time"

// AuthEvent is an audit record of an authentication-related action. Events
// are written asynchronously and never block the request path.
type AuthEvent struct {
	Username  string
	Action    string // "login", "refresh", "role_assigned", ...
	Detail    string
	Timestamp time.Time
}

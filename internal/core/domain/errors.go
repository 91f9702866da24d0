package domain

import "errors"

// Sentinel errors shared across the core. Services never mask these; the
// HTTP layer maps each kind to a status code.
var (
	// ErrInvalidInput marks a request whose shape is unusable (empty
	// username, missing password, and so on).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserExists and ErrRoleExists signal a duplicate unique key.
	ErrUserExists = errors.New("user already exists")
	ErrRoleExists = errors.New("role already exists")

	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")

	// ErrInvalidCredentials covers both an unknown username and a password
	// mismatch. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token verification failures, one sentinel per distinct cause.
	ErrTokenInvalid   = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")

	// ErrStoreUnavailable wraps infrastructure failures from the credential
	// store. The core propagates it unchanged, never swallows it.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

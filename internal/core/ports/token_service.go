package ports

import (
	"context"

	"github.com/platformlab/identity-service/internal/core/domain"
)

// TokenService issues and verifies the signed tokens that carry identity
// between requests.
type TokenService interface {
	// IssueAccessToken mints a short-lived token whose roles claim is a
	// snapshot of the user's current role names.
	IssueAccessToken(user *domain.User) (string, error)

	// IssueRefreshToken mints a longer-lived token carrying only the
	// subject. Roles are deliberately absent: they are re-read from the
	// store at exchange time.
	IssueRefreshToken(user *domain.User) (string, error)

	// IssuePair is the login-time convenience: one access plus one refresh
	// token for the same user.
	IssuePair(user *domain.User) (*domain.TokenPair, error)

	// Verify checks signature and expiry and returns the decoded claims.
	Verify(tokenString string) (*domain.AccessClaims, error)

	// Refresh exchanges a valid refresh token for a brand-new access token
	// built from the subject's current role set.
	Refresh(ctx context.Context, refreshTokenString string) (string, error)
}

// AuditSink receives authentication events for asynchronous recording.
type AuditSink interface {
	Record(event domain.AuthEvent)
}

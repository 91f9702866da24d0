package ports

import (
	"context"

	"github.com/platformlab/identity-service/internal/core/domain"
)

// CredentialStore is the persistence boundary for users and roles. It is the
// only shared mutable state in the core; implementations must make
// AddRoleToUser atomic so two concurrent assignments to the same user cannot
// lose an update. Infrastructure failures are returned wrapped around
// domain.ErrStoreUnavailable.
type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindRoleByName(ctx context.Context, name string) (*domain.Role, error)
	SaveUser(ctx context.Context, user *domain.User) (*domain.User, error)
	SaveRole(ctx context.Context, role *domain.Role) (*domain.Role, error)
	AddRoleToUser(ctx context.Context, username string, role domain.Role) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

package ports

import (
	"context"

	"github.com/platformlab/identity-service/internal/core/domain"
)

// IdentityService manages users, roles, and their many-to-many assignment.
type IdentityService interface {
	CreateUser(ctx context.Context, name, username, password string) (*domain.User, error)
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	AssignRole(ctx context.Context, username, roleName string) error
	GetUser(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

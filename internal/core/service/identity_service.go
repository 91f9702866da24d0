package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
)

// IdentityService orchestrates user and role management on top of the
// credential store. Passwords are hashed before they ever reach the store.
type IdentityService struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewIdentityService(store ports.CredentialStore, hasher ports.PasswordHasher, log zerolog.Logger) *IdentityService {
	return &IdentityService{store: store, hasher: hasher, log: log}
}

// CreateUser registers a new user. A duplicate username is rejected with
// domain.ErrUserExists; the store never silently overwrites.
func (s *IdentityService) CreateUser(ctx context.Context, name, username, password string) (*domain.User, error) {
	if name == "" || username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Roles:        []domain.Role{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.SaveUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("user created")
	return created, nil
}

// CreateRole registers a new role. Role names are unique; a duplicate is
// rejected with domain.ErrRoleExists.
func (s *IdentityService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	role := &domain.Role{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.store.SaveRole(ctx, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("role", name).Msg("role created")
	return created, nil
}

// AssignRole adds the named role to the user's role set. The role must
// already exist; assigning an unknown role is an error, not auto-creation.
// Assignment is idempotent: a role already held is a no-op.
func (s *IdentityService) AssignRole(ctx context.Context, username, roleName string) error {
	if username == "" || roleName == "" {
		return domain.ErrInvalidInput
	}

	if _, err := s.store.FindUserByUsername(ctx, username); err != nil {
		return err
	}

	role, err := s.store.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	if err := s.store.AddRoleToUser(ctx, username, *role); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Str("role", roleName).Msg("role assigned")
	return nil
}

func (s *IdentityService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.store.FindUserByUsername(ctx, username)
}

func (s *IdentityService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// Authenticate checks a username/password pair. An unknown username and a
// password mismatch both return domain.ErrInvalidCredentials so callers
// cannot enumerate accounts.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

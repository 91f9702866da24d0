// Package memory provides a mutex-guarded in-memory CredentialStore used in
// development mode and in tests. Semantics match the Mongo store: unique
// usernames and role names, idempotent atomic role assignment.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/platformlab/identity-service/internal/core/domain"
)

type Store struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	roles  map[string]*domain.Role
	nextID int
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		roles: make(map[string]*domain.Role),
	}
}

// cloneUser returns a deep-enough copy: callers must never receive a pointer
// into the store's own role slice.
func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) FindRoleByName(_ context.Context, name string) (*domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *Store) SaveUser(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}

	s.nextID++
	stored := cloneUser(user)
	stored.ID = strconv.Itoa(s.nextID)
	s.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (s *Store) SaveRole(_ context.Context, role *domain.Role) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.roles[role.Name]; exists {
		return nil, domain.ErrRoleExists
	}

	s.nextID++
	stored := *role
	stored.ID = strconv.Itoa(s.nextID)
	s.roles[stored.Name] = &stored

	out := stored
	return &out, nil
}

// AddRoleToUser performs the set-add under the store lock, so two racing
// assignments to the same user serialize instead of losing an update.
func (s *Store) AddRoleToUser(_ context.Context, username string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.AddRole(role)
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

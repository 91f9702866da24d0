package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
)

const defaultUserTTL = 30 * time.Second

// CachedCredentialStore decorates a CredentialStore with a short-TTL
// read-through cache for user lookups, serving the hot refresh path. Any
// write that can change what a token refresh observes (SaveUser,
// AddRoleToUser) invalidates the entry, so a refresh immediately after a
// role assignment sees the new role set. Cache failures degrade to the
// underlying store, never to an error.
type CachedCredentialStore struct {
	inner  ports.CredentialStore
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedCredentialStore(inner ports.CredentialStore, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedCredentialStore {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &CachedCredentialStore{inner: inner, client: client, ttl: ttl, log: log}
}

func (c *CachedCredentialStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	key := c.key(username)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var entry cachedUser
		if err := json.Unmarshal(raw, &entry); err == nil {
			return entry.toDomain(), nil
		}
		// Unreadable entry: drop it and fall through to the store.
		c.client.Del(ctx, key)
	}

	user, err := c.inner.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(fromDomain(user)); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("user cache set failed")
		}
	}
	return user, nil
}

func (c *CachedCredentialStore) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	created, err := c.inner.SaveUser(ctx, user)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, user.Username)
	return created, nil
}

func (c *CachedCredentialStore) AddRoleToUser(ctx context.Context, username string, role domain.Role) error {
	if err := c.inner.AddRoleToUser(ctx, username, role); err != nil {
		return err
	}
	c.invalidate(ctx, username)
	return nil
}

func (c *CachedCredentialStore) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	return c.inner.FindRoleByName(ctx, name)
}

func (c *CachedCredentialStore) SaveRole(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	return c.inner.SaveRole(ctx, role)
}

func (c *CachedCredentialStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	return c.inner.ListUsers(ctx)
}

func (c *CachedCredentialStore) invalidate(ctx context.Context, username string) {
	if err := c.client.Del(ctx, c.key(username)).Err(); err != nil {
		c.log.Warn().Err(err).Str("username", username).Msg("user cache invalidation failed")
	}
}

func (c *CachedCredentialStore) key(username string) string {
	return fmt.Sprintf("user:%s", username)
}

// cachedUser is the cache wire form. domain.User hides the password hash
// from JSON, but the cache must round-trip it for Authenticate to work.
type cachedUser struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"password_hash"`
	Roles        []domain.Role `json:"roles"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func fromDomain(u *domain.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Roles:        append([]domain.Role(nil), u.Roles...),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (e cachedUser) toDomain() *domain.User {
	if e.Roles == nil {
		e.Roles = []domain.Role{}
	}
	return &domain.User{
		ID:           e.ID,
		Name:         e.Name,
		Username:     e.Username,
		PasswordHash: e.PasswordHash,
		Roles:        e.Roles,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

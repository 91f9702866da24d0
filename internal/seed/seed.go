// Package seed loads development fixtures: the standard role ladder and a
// couple of users with assignments. Intended for local environments; gated
// behind SEED_FIXTURES in config.
package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
)

type fixtureUser struct {
	name     string
	username string
	password string
	roles    []string
}

var fixtureRoles = []string{
	domain.RoleUser,
	domain.RoleManager,
	domain.RoleAdmin,
	domain.RoleSuperAdmin,
}

var fixtureUsers = []fixtureUser{
	{"Jack Sparrow", "jack", "1234", []string{domain.RoleUser, domain.RoleManager}},
	{"Will Turner", "will", "1234", []string{domain.RoleManager}},
	{"Jim Carry", "jim", "1234", []string{domain.RoleAdmin}},
	{"Arnold Schwarzenegger", "arnold", "1234", []string{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleUser}},
}

// Run creates the fixture roles and users. It is idempotent: existing
// records are left alone, so repeated startups are safe.
func Run(ctx context.Context, identity ports.IdentityService, log zerolog.Logger) error {
	for _, name := range fixtureRoles {
		if _, err := identity.CreateRole(ctx, name); err != nil {
			if errors.Is(err, domain.ErrRoleExists) {
				continue
			}
			return err
		}
	}

	for _, fu := range fixtureUsers {
		if _, err := identity.CreateUser(ctx, fu.name, fu.username, fu.password); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				continue
			}
			return err
		}
		for _, role := range fu.roles {
			if err := identity.AssignRole(ctx, fu.username, role); err != nil {
				return err
			}
		}
	}

	log.Info().
		Int("roles", len(fixtureRoles)).
		Int("users", len(fixtureUsers)).
		Msg("fixtures seeded")
	return nil
}

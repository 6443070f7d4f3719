package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
	"github.com/dropDatabas3/rolbazli/internal/store/adapters/memory"
)

type fixture struct {
	store  *memory.Store
	roles  RoleRegistry
	access AccessController
	auth   Authenticator
}

func newFixture(t *testing.T, policy DeletePolicy) *fixture {
	t.Helper()
	s := memory.New(password.Fast)
	return &fixture{
		store: s,
		roles: NewRoleRegistry(RoleRegistryDeps{Roles: s.Roles(), DeletePolicy: policy}),
		access: NewAccessController(AccessControllerDeps{
			Users:       s.Users(),
			Roles:       s.Roles(),
			Memberships: s.Memberships(),
		}),
		auth: NewAuthenticator(AuthenticatorDeps{Users: s.Users()}),
	}
}

func (f *fixture) role(t *testing.T, name string) *repository.Role {
	t.Helper()
	r, err := f.roles.CreateRole(context.Background(), name)
	require.NoError(t, err)
	return r
}

func (f *fixture) user(t *testing.T, email string, roles ...string) *repository.User {
	t.Helper()
	if roles == nil {
		roles = []string{}
	}
	u, err := f.access.RegisterWithRoles(context.Background(), NewUser{Email: email, Password: "P@ssw0rd!"}, roles)
	require.NoError(t, err)
	return u
}

// Package storetest runs the same behavioural checks against every
// repository.Store adapter.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) repository.Store

// Run executes the contract suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("roles", func(t *testing.T) { testRoles(t, newStore(t)) })
	t.Run("memberships", func(t *testing.T) { testMemberships(t, newStore(t)) })
	t.Run("delete policy", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("concurrent assign", func(t *testing.T) { testConcurrentAssign(t, newStore(t)) })
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

func uniqueRole(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func testUsers(t *testing.T, s repository.Store) {
	defer s.Close()
	ctx := context.Background()
	users := s.Users()

	email := uniqueEmail("Mixed.Case")
	u, err := users.Create(ctx, repository.CreateUserInput{Email: email, Name: "Ada", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Equal(t, "Ada", u.Name)
	assert.Zero(t, u.AccessFailedCount)

	_, err = users.Create(ctx, repository.CreateUserInput{Email: email, Password: "other"})
	assert.ErrorIs(t, err, repository.ErrConflict, "duplicate email")

	got, err := users.GetByEmail(ctx, upper(email))
	require.NoError(t, err, "lookup is case-insensitive")
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByEmail(ctx, uniqueEmail("ghost"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := users.CheckPassword(ctx, u.ID, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.CheckPassword(ctx, u.ID, "PW")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = users.CheckPassword(ctx, uuid.NewString(), "pw")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NotPanics(t, func() { users.CheckDecoyPassword(ctx, "pw") })

	require.NoError(t, users.RecordLoginFailure(ctx, u.ID))
	require.NoError(t, users.RecordLoginFailure(ctx, u.ID))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AccessFailedCount)
	require.NoError(t, users.ResetLoginFailures(ctx, u.ID))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AccessFailedCount)

	list, err := users.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, lu := range list {
		found = found || lu.ID == u.ID
	}
	assert.True(t, found)
}

func testRoles(t *testing.T, s repository.Store) {
	defer s.Close()
	ctx := context.Background()
	roles := s.Roles()

	name := uniqueRole("Editor")
	r, err := roles.Create(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, r.Name)

	_, err = roles.Create(ctx, name)
	assert.ErrorIs(t, err, repository.ErrConflict)

	exists, err := roles.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = roles.Exists(ctx, upper(name))
	require.NoError(t, err)
	assert.False(t, exists, "role names are case-sensitive")

	other, err := roles.Create(ctx, uniqueRole("Viewer"))
	require.NoError(t, err)

	_, err = roles.Rename(ctx, r.ID, other.Name)
	assert.ErrorIs(t, err, repository.ErrConflict)

	renamed, err := roles.Rename(ctx, r.ID, name+"-v2")
	require.NoError(t, err)
	assert.Equal(t, name+"-v2", renamed.Name)
	_, err = roles.GetByName(ctx, name)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = roles.Rename(ctx, uuid.NewString(), "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	byID, err := roles.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, renamed.Name, byID.Name)

	list, err := roles.List(ctx)
	require.NoError(t, err)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Name, list[i].Name, "ordered by name")
	}
}

func testMemberships(t *testing.T, s repository.Store) {
	defer s.Close()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, repository.CreateUserInput{Email: uniqueEmail("m"), Password: "pw"})
	require.NoError(t, err)
	a, err := s.Roles().Create(ctx, uniqueRole("B"))
	require.NoError(t, err)
	b, err := s.Roles().Create(ctx, uniqueRole("A"))
	require.NoError(t, err)

	m := s.Memberships()
	require.NoError(t, m.AddUserToRole(ctx, u.ID, a.Name))
	require.NoError(t, m.AddUserToRole(ctx, u.ID, a.Name), "idempotent")
	require.NoError(t, m.AddUserToRole(ctx, u.ID, b.Name))

	n, err := s.Roles().CountMembers(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "double assign leaves one membership")

	names, err := m.RolesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.Name, a.Name}, names, "sorted by name")

	assert.ErrorIs(t, m.AddUserToRole(ctx, u.ID, uniqueRole("ghost")), repository.ErrNotFound)
	assert.ErrorIs(t, m.AddUserToRole(ctx, uuid.NewString(), a.Name), repository.ErrNotFound)

	require.NoError(t, m.RemoveUserFromRole(ctx, u.ID, a.Name))
	require.NoError(t, m.RemoveUserFromRole(ctx, u.ID, a.Name), "idempotent")
	names, err = m.RolesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.Name}, names)

	names, err = m.RolesForUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func testDelete(t *testing.T, s repository.Store) {
	defer s.Close()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, repository.CreateUserInput{Email: uniqueEmail("d"), Password: "pw"})
	require.NoError(t, err)
	r, err := s.Roles().Create(ctx, uniqueRole("Doomed"))
	require.NoError(t, err)
	require.NoError(t, s.Memberships().AddUserToRole(ctx, u.ID, r.Name))

	assert.ErrorIs(t, s.Roles().Delete(ctx, r.ID, false), repository.ErrRoleInUse)
	_, err = s.Roles().GetByID(ctx, r.ID)
	require.NoError(t, err, "refused delete keeps the role")

	require.NoError(t, s.Roles().Delete(ctx, r.ID, true))
	_, err = s.Roles().GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	names, err := s.Memberships().RolesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, names, "cascade drops memberships")

	empty, err := s.Roles().Create(ctx, uniqueRole("Empty"))
	require.NoError(t, err)
	require.NoError(t, s.Roles().Delete(ctx, empty.ID, false))

	assert.ErrorIs(t, s.Roles().Delete(ctx, uuid.NewString(), false), repository.ErrNotFound)
}

func testConcurrentAssign(t *testing.T, s repository.Store) {
	defer s.Close()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, repository.CreateUserInput{Email: uniqueEmail("c"), Password: "pw"})
	require.NoError(t, err)
	r, err := s.Roles().Create(ctx, uniqueRole("Race"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Memberships().AddUserToRole(ctx, u.ID, r.Name)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	n, err := s.Roles().CountMembers(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func upper(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
	}
	return string(out)
}

package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

func TestCreateRole(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()

	r, err := f.roles.CreateRole(ctx, "  Editor ")
	require.NoError(t, err)
	assert.Equal(t, "Editor", r.Name)
	assert.NotEmpty(t, r.ID)

	_, err = f.roles.CreateRole(ctx, "Editor")
	assert.ErrorIs(t, err, ErrRoleExists)
	assert.ErrorIs(t, err, errs.ErrConflict)

	// names are case-sensitive
	_, err = f.roles.CreateRole(ctx, "editor")
	assert.NoError(t, err)

	_, err = f.roles.CreateRole(ctx, "   ")
	assert.ErrorIs(t, err, ErrRoleNameRequired)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.roles.CreateRole(ctx, strings.Repeat("x", 257))
	assert.ErrorIs(t, err, ErrRoleNameInvalid)

	_, err = f.roles.CreateRole(ctx, "bad\x00name")
	assert.ErrorIs(t, err, ErrRoleNameInvalid)
}

func TestRenameRole(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()
	editor := f.role(t, "Editor")
	f.role(t, "Viewer")

	t.Run("same name is a no-op", func(t *testing.T) {
		r, changed, err := f.roles.RenameRole(ctx, editor.ID, "Editor")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "Editor", r.Name)
	})

	t.Run("taken name conflicts", func(t *testing.T) {
		_, _, err := f.roles.RenameRole(ctx, editor.ID, "Viewer")
		assert.ErrorIs(t, err, ErrRoleNameTaken)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, _, err := f.roles.RenameRole(ctx, "missing", "Other")
		assert.ErrorIs(t, err, ErrRoleNotFound)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		_, _, err := f.roles.RenameRole(ctx, "", "Other")
		assert.ErrorIs(t, err, ErrRoleIDRequired)
		_, _, err = f.roles.RenameRole(ctx, editor.ID, " ")
		assert.ErrorIs(t, err, ErrRoleNameRequired)
	})

	t.Run("rename keeps memberships", func(t *testing.T) {
		u := f.user(t, "ada@example.com")
		require.NoError(t, f.access.AssignRole(ctx, u.ID, editor.ID))

		r, changed, err := f.roles.RenameRole(ctx, editor.ID, "Author")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, editor.ID, r.ID)

		roles, err := f.access.ListUserRoles(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Author"}, roles)
	})
}

func TestDeleteRoleRestrict(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()
	r := f.role(t, "Editor")
	u := f.user(t, "ada@example.com", "Editor")

	err := f.roles.DeleteRole(ctx, r.ID)
	assert.ErrorIs(t, err, ErrRoleHasMembers)
	assert.ErrorIs(t, err, errs.ErrConflict)

	require.NoError(t, f.access.RevokeRole(ctx, u.ID, r.ID))
	require.NoError(t, f.roles.DeleteRole(ctx, r.ID))
	assert.ErrorIs(t, f.roles.DeleteRole(ctx, r.ID), ErrRoleNotFound)
	assert.ErrorIs(t, f.roles.DeleteRole(ctx, ""), ErrRoleIDRequired)
}

func TestDeleteRoleCascade(t *testing.T) {
	f := newFixture(t, DeleteCascade)
	ctx := context.Background()
	r := f.role(t, "Editor")
	f.role(t, "Viewer")
	u := f.user(t, "ada@example.com", "Editor", "Viewer")

	require.NoError(t, f.roles.DeleteRole(ctx, r.ID))

	roles, err := f.access.ListUserRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Viewer"}, roles)
}

func TestListRoles(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()

	list, err := f.roles.ListRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	f.role(t, "Viewer")
	f.role(t, "Admin")
	f.user(t, "a@example.com", "Admin")
	f.user(t, "b@example.com", "Admin", "Viewer")

	list, err = f.roles.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Admin", list[0].Role.Name)
	assert.Equal(t, 2, list[0].Members)
	assert.Equal(t, "Viewer", list[1].Role.Name)
	assert.Equal(t, 1, list[1].Members)
}

type failingCounts struct {
	repository.RoleRepository
}

func (failingCounts) CountMembers(context.Context, string) (int, error) {
	return 0, errors.New("boom")
}

func TestListRolesCountError(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	f.role(t, "Admin")

	reg := NewRoleRegistry(RoleRegistryDeps{Roles: failingCounts{f.store.Roles()}})
	_, err := reg.ListRoles(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestParseDeletePolicy(t *testing.T) {
	for in, want := range map[string]DeletePolicy{
		"":          DeleteRestrict,
		"restrict":  DeleteRestrict,
		" Cascade ": DeleteCascade,
	} {
		got, err := ParseDeletePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDeletePolicy("orphan")
	assert.Error(t, err)
}

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()
	u := f.user(t, "ada@example.com")

	t.Run("success ignores email case", func(t *testing.T) {
		got, err := f.auth.Authenticate(ctx, "  ADA@example.com ", "P@ssw0rd!")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, "ghost@example.com", "P@ssw0rd!")
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.ErrorIs(t, err, errs.ErrCredential)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, "ada@example.com", "nope")
		assert.ErrorIs(t, err, ErrBadCredential)
		assert.ErrorIs(t, err, errs.ErrCredential)
		assert.NotErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, "", "")
		var ve *errs.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "email")
		assert.Contains(t, ve.Fields, "password")
	})
}

func TestAuthenticateFailureCounter(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()
	u := f.user(t, "ada@example.com")

	for n := 0; n < 3; n++ {
		_, err := f.auth.Authenticate(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrBadCredential)
	}
	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.AccessFailedCount)

	got, err := f.auth.Authenticate(ctx, "ada@example.com", "P@ssw0rd!")
	require.NoError(t, err, "no lockout")
	assert.Zero(t, got.AccessFailedCount)

	stored, err = f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.AccessFailedCount)
}

type decoyCounter struct {
	repository.UserRepository
	calls int
}

func (d *decoyCounter) CheckDecoyPassword(ctx context.Context, password string) {
	d.calls++
	d.UserRepository.CheckDecoyPassword(ctx, password)
}

func TestAuthenticateUnknownEmailHashesAnyway(t *testing.T) {
	f := newFixture(t, DeleteRestrict)
	ctx := context.Background()
	f.user(t, "ada@example.com")
	users := &decoyCounter{UserRepository: f.store.Users()}
	auth := NewAuthenticator(AuthenticatorDeps{Users: users})

	_, err := auth.Authenticate(ctx, "ghost@example.com", "guess")
	require.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, 1, users.calls)

	_, err = auth.Authenticate(ctx, "ada@example.com", "guess")
	require.ErrorIs(t, err, ErrBadCredential)
	assert.Equal(t, 1, users.calls, "known accounts verify their own hash")
}

package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
	"github.com/dropDatabas3/rolbazli/internal/store"
	"github.com/dropDatabas3/rolbazli/internal/store/adapters/memory"
	"github.com/dropDatabas3/rolbazli/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return memory.New(password.Fast)
	})
}

func TestOpenThroughRegistry(t *testing.T) {
	s, err := store.Open(context.Background(), store.Config{Driver: "mem", Hash: password.Fast})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "memory", s.Driver())
	assert.NoError(t, s.Ping(context.Background()))
	assert.Contains(t, store.Adapters(), "memory")
}

func TestCancelledContext(t *testing.T) {
	s := memory.New(password.Fast)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Users().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestCreateRejectsEmptyPassword(t *testing.T) {
	s := memory.New(password.Fast)
	_, err := s.Users().Create(context.Background(), repository.CreateUserInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

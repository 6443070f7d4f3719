package identity

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/util"
	"github.com/dropDatabas3/rolbazli/internal/validation"
)

// Authenticator verifies a login attempt.
type Authenticator interface {
	// Authenticate returns the user when password matches. Unknown emails fail
	// with ErrAccountNotFound and wrong passwords with ErrBadCredential; both
	// match errs.ErrCredential.
	Authenticate(ctx context.Context, email, password string) (*repository.User, error)
}

// AuthenticatorDeps holds the dependencies of the authenticator.
type AuthenticatorDeps struct {
	Users repository.UserRepository
}

type authenticator struct {
	users repository.UserRepository
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(deps AuthenticatorDeps) Authenticator {
	return &authenticator{users: deps.Users}
}

func (a *authenticator) Authenticate(ctx context.Context, email, password string) (*repository.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("authenticator"),
		logger.Op("Authenticate"),
	)

	email = validation.NormalizeEmail(email)
	ve := &errs.ValidationError{}
	if email == "" {
		ve.Add("email", "required")
	}
	if password == "" {
		ve.Add("password", "required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			a.users.CheckDecoyPassword(ctx, password)
			log.Debug("login for unknown email", logger.Email(util.MaskEmail(email)))
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := a.users.CheckPassword(ctx, user.ID, password)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		// The counter is informational; there is no lockout.
		if err := a.users.RecordLoginFailure(ctx, user.ID); err != nil {
			log.Warn("record login failure", logger.UserID(user.ID), logger.Err(err))
		}
		log.Info("bad password", logger.UserID(user.ID))
		return nil, ErrBadCredential
	}

	if user.AccessFailedCount > 0 {
		if err := a.users.ResetLoginFailures(ctx, user.ID); err != nil {
			log.Warn("reset login failures", logger.UserID(user.ID), logger.Err(err))
		} else {
			user.AccessFailedCount = 0
		}
	}
	return user, nil
}

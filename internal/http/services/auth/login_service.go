package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
	"github.com/dropDatabas3/rolbazli/internal/identity"
	"github.com/dropDatabas3/rolbazli/internal/metrics"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

// ErrInvalidCredentials replaces both login failure causes when they are
// unified.
var ErrInvalidCredentials = errs.New("Invalid email or password.", errs.ErrCredential)

type loginService struct {
	deps Deps
}

// NewLoginService builds a LoginService.
func NewLoginService(d Deps) LoginService {
	return &loginService{deps: d}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	user, err := s.deps.Authenticator.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAccountNotFound):
			metrics.LoginAttempts.WithLabelValues("unknown_account").Inc()
		case errors.Is(err, identity.ErrBadCredential):
			metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		case errors.Is(err, errs.ErrValidation):
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			return nil, err
		default:
			metrics.LoginAttempts.WithLabelValues("error").Inc()
			log.Error("authenticate failed", logger.Err(err))
			return nil, err
		}
		if s.deps.UnifyLoginErrors {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	log = log.With(logger.UserID(user.ID))

	roles, err := s.deps.Access.ListUserRoles(ctx, user.ID)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		log.Error("list roles failed", logger.Err(err))
		return nil, fmt.Errorf("list roles: %w", err)
	}

	tok, err := s.deps.Issuer.IssueToken(*user, roles)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		log.Error("issue token failed", logger.Err(err))
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	metrics.TokensIssued.Inc()

	log.Info("login ok", logger.Roles(roles))
	return &dto.LoginResult{Token: tok.Value, ExpiresAt: tok.ExpiresAt, UserID: user.ID}, nil
}

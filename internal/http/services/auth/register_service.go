package auth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/rolbazli/internal/audit"
	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
	mw "github.com/dropDatabas3/rolbazli/internal/http/middlewares"
	"github.com/dropDatabas3/rolbazli/internal/identity"
	"github.com/dropDatabas3/rolbazli/internal/metrics"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

type registerService struct {
	deps Deps
}

// NewRegisterService builds a RegisterService.
func NewRegisterService(d Deps) RegisterService {
	return &registerService{deps: d}
}

// Register creates the account. When some roles could not be assigned the
// account still exists; the result lists them in FailedRoles and err is nil.
func (s *registerService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	user, err := s.deps.Access.RegisterWithRoles(ctx, identity.NewUser{
		Email:       in.Email,
		Name:        in.FullName,
		Password:    in.Password,
		PhoneNumber: in.PhoneNumber,
	}, in.Roles)

	var pf *errs.PartialFailure
	switch {
	case err == nil:
		metrics.Registrations.WithLabelValues("created").Inc()
		audit.Log(ctx, audit.UserRegistered, mw.GetUserID(ctx), logger.String("target_user_id", user.ID))
		return &dto.RegisterResult{UserID: user.ID}, nil
	case errors.As(err, &pf) && user != nil:
		metrics.Registrations.WithLabelValues("partial").Inc()
		audit.Log(ctx, audit.UserRegistered, mw.GetUserID(ctx),
			logger.String("target_user_id", user.ID), logger.Strings("failed_roles", pf.FailedItems()))
		log.Warn("registered with missing roles", logger.UserID(user.ID), logger.Strings("failed_roles", pf.FailedItems()))
		return &dto.RegisterResult{UserID: user.ID, FailedRoles: pf.FailedItems()}, nil
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrConflict):
		metrics.Registrations.WithLabelValues("rejected").Inc()
		return nil, err
	default:
		metrics.Registrations.WithLabelValues("error").Inc()
		log.Error("register failed", logger.Err(err))
		return nil, err
	}
}

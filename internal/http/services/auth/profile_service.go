package auth

import (
	"context"

	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
	"github.com/dropDatabas3/rolbazli/internal/identity"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

type profileService struct {
	deps Deps
}

// NewProfileService builds a ProfileService.
func NewProfileService(d Deps) ProfileService {
	return &profileService{deps: d}
}

func (s *profileService) UserDetail(ctx context.Context, userID string) (*dto.UserDetail, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.profile"),
		logger.Op("UserDetail"),
		logger.UserID(userID),
	)

	u, err := s.deps.Access.GetUser(ctx, userID)
	if err != nil {
		log.Debug("get user failed", logger.Err(err))
		return nil, err
	}
	return &dto.UserDetail{
		ID:                   u.User.ID,
		FullName:             u.User.Name,
		Email:                u.User.Email,
		Roles:                nonNil(u.Roles),
		PhoneNumber:          u.User.PhoneNumber,
		TwoFactorEnabled:     u.User.TwoFactorEnabled,
		PhoneNumberConfirmed: u.User.PhoneNumberConfirmed,
		AccessFailedCount:    u.User.AccessFailedCount,
	}, nil
}

func (s *profileService) ListUsers(ctx context.Context) ([]dto.UserItem, error) {
	users, err := s.deps.Access.ListAllUsers(ctx)
	if err != nil {
		logger.From(ctx).Error("list users failed",
			logger.Layer("service"), logger.Op("ListUsers"), logger.Err(err))
		return nil, err
	}
	out := make([]dto.UserItem, 0, len(users))
	for _, u := range users {
		out = append(out, toUserItem(u))
	}
	return out, nil
}

func toUserItem(u identity.UserWithRoles) dto.UserItem {
	return dto.UserItem{
		ID:       u.User.ID,
		Email:    u.User.Email,
		FullName: u.User.Name,
		Roles:    nonNil(u.Roles),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

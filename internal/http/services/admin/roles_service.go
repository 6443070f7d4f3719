package admin

import (
	"context"

	"github.com/dropDatabas3/rolbazli/internal/audit"
	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/admin"
	mw "github.com/dropDatabas3/rolbazli/internal/http/middlewares"
	"github.com/dropDatabas3/rolbazli/internal/metrics"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

// RolesService exposes role management and membership changes.
type RolesService interface {
	Create(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleCreated, error)
	List(ctx context.Context) ([]dto.RoleItem, error)
	// Rename returns changed=false when the name is unchanged.
	Rename(ctx context.Context, roleID string, in dto.UpdateRoleRequest) (changed bool, err error)
	Delete(ctx context.Context, roleID string) error
	Assign(ctx context.Context, in dto.MembershipRequest) error
	Revoke(ctx context.Context, in dto.MembershipRequest) error
}

type rolesService struct {
	deps Deps
}

// NewRolesService builds a RolesService.
func NewRolesService(d Deps) RolesService {
	return &rolesService{deps: d}
}

func (s *rolesService) Create(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleCreated, error) {
	role, err := s.deps.Roles.CreateRole(ctx, in.RoleName)
	metrics.ObserveRoleChange("create", err)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.RoleCreated, mw.GetUserID(ctx), logger.RoleID(role.ID), logger.RoleName(role.Name))
	return &dto.RoleCreated{ID: role.ID, Name: role.Name, Message: "Role Created successfully"}, nil
}

func (s *rolesService) List(ctx context.Context) ([]dto.RoleItem, error) {
	roles, err := s.deps.Roles.ListRoles(ctx)
	if err != nil {
		logger.From(ctx).Error("list roles failed",
			logger.Layer("service"), logger.Op("Roles.List"), logger.Err(err))
		return nil, err
	}
	out := make([]dto.RoleItem, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleItem{ID: r.Role.ID, Name: r.Role.Name, TotalUsers: r.Members})
	}
	return out, nil
}

func (s *rolesService) Rename(ctx context.Context, roleID string, in dto.UpdateRoleRequest) (bool, error) {
	_, changed, err := s.deps.Roles.RenameRole(ctx, roleID, in.Name)
	metrics.ObserveRoleChange("rename", err)
	if err == nil && changed {
		audit.Log(ctx, audit.RoleRenamed, mw.GetUserID(ctx), logger.RoleID(roleID), logger.RoleName(in.Name))
	}
	return changed, err
}

func (s *rolesService) Delete(ctx context.Context, roleID string) error {
	err := s.deps.Roles.DeleteRole(ctx, roleID)
	metrics.ObserveRoleChange("delete", err)
	if err == nil {
		audit.Log(ctx, audit.RoleDeleted, mw.GetUserID(ctx), logger.RoleID(roleID))
	}
	return err
}

func (s *rolesService) Assign(ctx context.Context, in dto.MembershipRequest) error {
	err := s.deps.Access.AssignRole(ctx, in.UserID, in.RoleID)
	metrics.ObserveRoleChange("assign", err)
	if err == nil {
		audit.Log(ctx, audit.RoleAssigned, mw.GetUserID(ctx), logger.String("target_user_id", in.UserID), logger.RoleID(in.RoleID))
	}
	return err
}

func (s *rolesService) Revoke(ctx context.Context, in dto.MembershipRequest) error {
	err := s.deps.Access.RevokeRole(ctx, in.UserID, in.RoleID)
	metrics.ObserveRoleChange("revoke", err)
	if err == nil {
		audit.Log(ctx, audit.RoleRevoked, mw.GetUserID(ctx), logger.String("target_user_id", in.UserID), logger.RoleID(in.RoleID))
	}
	return err
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/validation"
)

// DeletePolicy decides what DeleteRole does with a role that still has members.
type DeletePolicy string

const (
	// DeleteRestrict refuses the delete with ErrRoleHasMembers.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade drops the memberships together with the role.
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy accepts "restrict" (default for "") and "cascade".
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeleteRestrict:
		return DeleteRestrict, nil
	case DeleteCascade:
		return DeleteCascade, nil
	default:
		return "", fmt.Errorf("unknown role delete policy %q", s)
	}
}

const defaultFanout = 8

// RoleSummary is a role with its current member count.
type RoleSummary struct {
	Role    repository.Role
	Members int
}

// RoleRegistry manages the role set.
type RoleRegistry interface {
	CreateRole(ctx context.Context, name string) (*repository.Role, error)
	// RenameRole returns changed=false when newName equals the current name.
	RenameRole(ctx context.Context, roleID, newName string) (role *repository.Role, changed bool, err error)
	DeleteRole(ctx context.Context, roleID string) error
	ListRoles(ctx context.Context) ([]RoleSummary, error)
}

// RoleRegistryDeps holds the dependencies of the role registry.
type RoleRegistryDeps struct {
	Roles        repository.RoleRepository
	DeletePolicy DeletePolicy
	// Fanout bounds concurrent member-count queries in ListRoles. Default 8.
	Fanout int
}

type roleRegistry struct {
	deps RoleRegistryDeps
}

// NewRoleRegistry builds a RoleRegistry.
func NewRoleRegistry(deps RoleRegistryDeps) RoleRegistry {
	if deps.DeletePolicy == "" {
		deps.DeletePolicy = DeleteRestrict
	}
	if deps.Fanout <= 0 {
		deps.Fanout = defaultFanout
	}
	return &roleRegistry{deps: deps}
}

func (r *roleRegistry) CreateRole(ctx context.Context, name string) (*repository.Role, error) {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("roles"),
		logger.Op("CreateRole"),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}
	if !validation.ValidRoleName(name) {
		return nil, ErrRoleNameInvalid
	}

	exists, err := r.deps.Roles.Exists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check role: %w", err)
	}
	if exists {
		return nil, ErrRoleExists
	}

	role, err := r.deps.Roles.Create(ctx, name)
	if err != nil {
		// lost a race against a concurrent create
		if repository.IsConflict(err) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	log.Info("role created", logger.RoleID(role.ID), logger.RoleName(role.Name))
	return role, nil
}

func (r *roleRegistry) RenameRole(ctx context.Context, roleID, newName string) (*repository.Role, bool, error) {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("roles"),
		logger.Op("RenameRole"),
		logger.RoleID(roleID),
	)

	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, false, ErrRoleIDRequired
	}

	role, err := r.deps.Roles.GetByID(ctx, roleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrRoleNotFound
		}
		return nil, false, fmt.Errorf("get role: %w", err)
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, false, ErrRoleNameRequired
	}
	if newName == role.Name {
		return role, false, nil
	}
	if !validation.ValidRoleName(newName) {
		return nil, false, ErrRoleNameInvalid
	}

	other, err := r.deps.Roles.GetByName(ctx, newName)
	switch {
	case err == nil && other.ID != role.ID:
		return nil, false, ErrRoleNameTaken
	case err != nil && !repository.IsNotFound(err):
		return nil, false, fmt.Errorf("check role name: %w", err)
	}

	renamed, err := r.deps.Roles.Rename(ctx, role.ID, newName)
	if err != nil {
		switch {
		case repository.IsConflict(err):
			return nil, false, ErrRoleNameTaken
		case repository.IsNotFound(err):
			return nil, false, ErrRoleNotFound
		}
		return nil, false, fmt.Errorf("rename role: %w", err)
	}

	log.Info("role renamed", logger.String("from", role.Name), logger.RoleName(renamed.Name))
	return renamed, true, nil
}

func (r *roleRegistry) DeleteRole(ctx context.Context, roleID string) error {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("roles"),
		logger.Op("DeleteRole"),
		logger.RoleID(roleID),
	)

	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return ErrRoleIDRequired
	}

	cascade := r.deps.DeletePolicy == DeleteCascade
	err := r.deps.Roles.Delete(ctx, roleID, cascade)
	switch {
	case err == nil:
	case repository.IsNotFound(err):
		return ErrRoleNotFound
	case errors.Is(err, repository.ErrRoleInUse):
		log.Info("role delete refused, role has members")
		return ErrRoleHasMembers
	default:
		return fmt.Errorf("delete role: %w", err)
	}

	log.Info("role deleted", logger.Bool("cascade", cascade))
	return nil
}

func (r *roleRegistry) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	roles, err := r.deps.Roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	out := make([]RoleSummary, len(roles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.deps.Fanout)
	for i := range roles {
		i := i
		g.Go(func() error {
			n, err := r.deps.Roles.CountMembers(gctx, roles[i].ID)
			if err != nil {
				return fmt.Errorf("count members of %q: %w", roles[i].Name, err)
			}
			out[i] = RoleSummary{Role: roles[i], Members: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

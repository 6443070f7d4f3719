package identity

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
	"github.com/dropDatabas3/rolbazli/internal/validation"
)

// DefaultRole is assigned on registration when no roles are requested.
const DefaultRole = "User"

// NewUser is a registration request.
type NewUser struct {
	Email       string
	Name        string
	Password    string
	PhoneNumber string
}

// UserWithRoles pairs an account with the role names it holds.
type UserWithRoles struct {
	User  repository.User
	Roles []string
}

// AccessController manages role membership and registration.
type AccessController interface {
	// AssignRole is idempotent.
	AssignRole(ctx context.Context, userID, roleID string) error
	// RevokeRole is idempotent.
	RevokeRole(ctx context.Context, userID, roleID string) error

	// RegisterWithRoles creates the account and assigns roles. A nil roles
	// slice means the default role; an empty non-nil slice assigns nothing.
	// Role assignment is best effort: on per-role failures the created user
	// is returned together with an *errs.PartialFailure.
	RegisterWithRoles(ctx context.Context, nu NewUser, roles []string) (*repository.User, error)

	ListUserRoles(ctx context.Context, userID string) ([]string, error)
	// ListAllUsers never returns a nil slice on success.
	ListAllUsers(ctx context.Context) ([]UserWithRoles, error)
	GetUser(ctx context.Context, userID string) (*UserWithRoles, error)
}

// AccessControllerDeps holds the dependencies of the access controller.
type AccessControllerDeps struct {
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	Memberships repository.MembershipRepository

	// DefaultRole overrides the package default when set.
	DefaultRole    string
	PasswordPolicy password.Policy
	// Fanout bounds concurrent role lookups in ListAllUsers. Default 8.
	Fanout int
}

type accessController struct {
	deps AccessControllerDeps
}

// NewAccessController builds an AccessController.
func NewAccessController(deps AccessControllerDeps) AccessController {
	if strings.TrimSpace(deps.DefaultRole) == "" {
		deps.DefaultRole = DefaultRole
	}
	if deps.Fanout <= 0 {
		deps.Fanout = defaultFanout
	}
	return &accessController{deps: deps}
}

// lookup resolves both ends of a membership change.
func (a *accessController) lookup(ctx context.Context, userID, roleID string) (*repository.User, *repository.Role, error) {
	userID, roleID = strings.TrimSpace(userID), strings.TrimSpace(roleID)
	ve := &errs.ValidationError{}
	if userID == "" {
		ve.Add("userId", "required")
	}
	if roleID == "" {
		ve.Add("roleId", "required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, nil, err
	}

	user, err := a.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	role, err := a.deps.Roles.GetByID(ctx, roleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, fmt.Errorf("get role: %w", err)
	}
	return user, role, nil
}

func (a *accessController) AssignRole(ctx context.Context, userID, roleID string) error {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("access"),
		logger.Op("AssignRole"),
	)

	user, role, err := a.lookup(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if err := a.deps.Memberships.AddUserToRole(ctx, user.ID, role.Name); err != nil {
		// the role was deleted or renamed after the lookup
		if repository.IsNotFound(err) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("add user to role: %w", err)
	}

	log.Info("role assigned", logger.UserID(user.ID), logger.RoleName(role.Name))
	return nil
}

func (a *accessController) RevokeRole(ctx context.Context, userID, roleID string) error {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("access"),
		logger.Op("RevokeRole"),
	)

	user, role, err := a.lookup(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if err := a.deps.Memberships.RemoveUserFromRole(ctx, user.ID, role.Name); err != nil {
		if repository.IsNotFound(err) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("remove user from role: %w", err)
	}

	log.Info("role revoked", logger.UserID(user.ID), logger.RoleName(role.Name))
	return nil
}

func (a *accessController) validateNewUser(nu NewUser) error {
	ve := &errs.ValidationError{}
	switch email := validation.NormalizeEmail(nu.Email); {
	case email == "":
		ve.Add("email", "required")
	case !validation.ValidEmail(email):
		ve.Add("email", "invalid format")
	}
	if ok, reasons := a.deps.PasswordPolicy.Validate(nu.Password); !ok {
		ve.Add("password", password.Describe(reasons))
	}
	return ve.OrNil()
}

func (a *accessController) RegisterWithRoles(ctx context.Context, nu NewUser, roles []string) (*repository.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("core"),
		logger.Component("access"),
		logger.Op("RegisterWithRoles"),
	)

	if err := a.validateNewUser(nu); err != nil {
		return nil, err
	}

	user, err := a.deps.Users.Create(ctx, repository.CreateUserInput{
		Email:       validation.NormalizeEmail(nu.Email),
		Name:        strings.TrimSpace(nu.Name),
		Password:    nu.Password,
		PhoneNumber: strings.TrimSpace(nu.PhoneNumber),
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log = log.With(logger.UserID(user.ID))
	log.Info("user created")

	if roles == nil {
		roles = []string{a.deps.DefaultRole}
	}

	// No rollback and no cancellation checkpoint between items: a failure
	// leaves the user with whatever was assigned before it.
	pf := &errs.PartialFailure{Op: "assign roles"}
	for _, name := range dedupTrim(roles) {
		if err := a.assignByName(ctx, user.ID, name); err != nil {
			log.Warn("role not assigned on registration", logger.RoleName(name), logger.Err(err))
			pf.Fail(name, err)
			continue
		}
		pf.Succeeded = append(pf.Succeeded, name)
	}
	if err := pf.OrNil(); err != nil {
		return user, err
	}
	return user, nil
}

func (a *accessController) assignByName(ctx context.Context, userID, name string) error {
	exists, err := a.deps.Roles.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check role: %w", err)
	}
	if !exists {
		return ErrRoleNotFound
	}
	if err := a.deps.Memberships.AddUserToRole(ctx, userID, name); err != nil {
		if repository.IsNotFound(err) {
			return ErrRoleNotFound
		}
		return err
	}
	return nil
}

func (a *accessController) ListUserRoles(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if _, err := a.deps.Users.GetByID(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return a.rolesFor(ctx, userID)
}

func (a *accessController) rolesFor(ctx context.Context, userID string) ([]string, error) {
	names, err := a.deps.Memberships.RolesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (a *accessController) ListAllUsers(ctx context.Context) ([]UserWithRoles, error) {
	users, err := a.deps.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]UserWithRoles, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.deps.Fanout)
	for i := range users {
		i := i
		g.Go(func() error {
			roles, err := a.rolesFor(gctx, users[i].ID)
			if err != nil {
				return err
			}
			out[i] = UserWithRoles{User: users[i], Roles: roles}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *accessController) GetUser(ctx context.Context, userID string) (*UserWithRoles, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	user, err := a.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	roles, err := a.rolesFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserWithRoles{User: *user, Roles: roles}, nil
}

// dedupTrim drops blanks and repeats, keeping the first occurrence order.
func dedupTrim(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

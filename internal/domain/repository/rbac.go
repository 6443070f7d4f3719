package repository

import (
	"context"
	"time"
)

// Role is a named group of users. Names are unique and case-sensitive.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// RoleRepository stores the role set.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	Exists(ctx context.Context, name string) (bool, error)

	// Create adds a role. ErrConflict when the name is taken.
	Create(ctx context.Context, name string) (*Role, error)

	// Rename changes the name. ErrConflict when another role holds newName.
	Rename(ctx context.Context, id, newName string) (*Role, error)

	// Delete removes the role. With cascade the memberships go with it in the
	// same transaction; without it ErrRoleInUse is returned while members exist.
	Delete(ctx context.Context, id string, cascade bool) error

	// List returns every role ordered by name.
	List(ctx context.Context) ([]Role, error)

	// CountMembers returns how many users hold the role.
	CountMembers(ctx context.Context, roleID string) (int, error)
}

// MembershipRepository stores the user/role relation.
// A (user, role) pair exists at most once.
type MembershipRepository interface {
	// RolesForUser returns the names of the roles held by the user, sorted.
	RolesForUser(ctx context.Context, userID string) ([]string, error)

	// AddUserToRole is idempotent. ErrNotFound when the role name does not exist.
	AddUserToRole(ctx context.Context, userID, roleName string) error

	// RemoveUserFromRole is idempotent.
	RemoveUserFromRole(ctx context.Context, userID, roleName string) error
}

// Store is an open credential store.
type Store interface {
	Driver() string
	Ping(ctx context.Context) error
	Close() error

	Users() UserRepository
	Roles() RoleRepository
	Memberships() MembershipRepository
}

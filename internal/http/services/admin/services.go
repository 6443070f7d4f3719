// Package admin holds the services behind /api/roles.
package admin

import (
	"github.com/dropDatabas3/rolbazli/internal/identity"
)

// Deps holds the dependencies of the admin services.
type Deps struct {
	Roles  identity.RoleRegistry
	Access identity.AccessController
}

// Services groups the admin services.
type Services struct {
	Roles RolesService
}

// NewServices builds the admin services.
func NewServices(d Deps) Services {
	return Services{
		Roles: NewRolesService(d),
	}
}

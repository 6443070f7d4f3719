// Package admin holds the /api/roles controllers.
package admin

import svc "github.com/dropDatabas3/rolbazli/internal/http/services/admin"

// Controllers groups the admin controllers.
type Controllers struct {
	Roles *RolesController
}

// NewControllers builds the admin controllers.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Roles: NewRolesController(s.Roles),
	}
}

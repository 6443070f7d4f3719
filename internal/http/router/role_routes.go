package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/admin"
)

// get-roles is anonymous; every mutation needs the admin role.
func registerRoleRoutes(r chi.Router, ctrl *adminctrl.Controllers, c chains) {
	roles := ctrl.Roles
	r.Route("/api/roles", func(r chi.Router) {
		r.Method(http.MethodGet, "/get-roles", c.public(roles.List))
		r.Method(http.MethodPost, "/create-role", c.admin(roles.Create))
		r.Method(http.MethodPost, "/assign-role", c.admin(roles.Assign))
		r.Method(http.MethodPost, "/revoke-role", c.admin(roles.Revoke))
		r.Method(http.MethodPut, "/{id}", c.admin(roles.Update))
		r.Method(http.MethodDelete, "/{id}", c.admin(roles.Delete))
	})
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/auth"
)

func registerAccountRoutes(r chi.Router, ctrl *authctrl.Controllers, c chains) {
	r.Route("/api/account", func(r chi.Router) {
		r.Method(http.MethodPost, "/register", c.public(ctrl.Register.Register))
		r.Method(http.MethodPost, "/login", c.credential(ctrl.Login.Login))
		r.Method(http.MethodGet, "/user-detail", c.authed(ctrl.Profile.UserDetail))
		r.Method(http.MethodGet, "/get-users", c.authed(ctrl.Profile.ListUsers))
	})
}

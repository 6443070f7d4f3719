// Package router mounts the HTTP routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	mw "github.com/dropDatabas3/rolbazli/internal/http/middlewares"
	"github.com/dropDatabas3/rolbazli/internal/rate"
)

// Deps holds everything the router mounts.
type Deps struct {
	Account *authctrl.Controllers
	Admin   *adminctrl.Controllers
	Health  *healthctrl.Controllers

	Verifier  mw.TokenVerifier
	AdminRole string

	// Limiters are optional. LoginLimiter budgets one address per email,
	// LoginEmailLimiter one email across every address.
	LoginLimiter      rate.Limiter
	LoginEmailLimiter rate.Limiter
	APILimiter        rate.Limiter

	// ClientIP attributes requests to callers; nil trusts no proxy.
	ClientIP *mw.ClientIPResolver

	CORSOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// New builds the route tree.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.WithCORS(d.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	c := chains{
		verifier:   d.Verifier,
		adminRole:  d.AdminRole,
		clientIP:   mw.WithClientIP(d.ClientIP),
		login:      mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.LoginLimiter, KeyFunc: mw.LoginRateKey, Scope: "login"}),
		loginEmail: mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.LoginEmailLimiter, KeyFunc: mw.LoginEmailRateKey, Scope: "login_email"}),
		api:        mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.APILimiter, KeyFunc: mw.IPOnlyRateKey, Scope: "api"}),
	}

	if d.Account != nil {
		registerAccountRoutes(r, d.Account, c)
	}
	if d.Admin != nil {
		registerRoleRoutes(r, d.Admin, c)
	}
	if d.Health != nil {
		r.Get("/healthz", c.plain(d.Health.Health.Live).ServeHTTP)
		r.Get("/readyz", c.plain(d.Health.Health.Ready).ServeHTTP)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	return r
}

// chains builds the per-route middleware stacks.
type chains struct {
	verifier   mw.TokenVerifier
	adminRole  string
	clientIP   mw.Middleware
	login      mw.Middleware
	loginEmail mw.Middleware
	api        mw.Middleware
}

func (c chains) plain(h http.HandlerFunc) http.Handler {
	return mw.ChainFunc(h,
		mw.WithRecover(),
		mw.WithRequestID(),
		c.clientIP,
		mw.WithLogging(),
	)
}

// public is for anonymous API routes.
func (c chains) public(h http.HandlerFunc) http.Handler {
	return mw.ChainFunc(h,
		mw.WithRecover(),
		mw.WithRequestID(),
		c.clientIP,
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		c.api,
		mw.WithLogging(),
	)
}

// credential is for login: budgets keyed by IP and email, then by email alone.
func (c chains) credential(h http.HandlerFunc) http.Handler {
	return mw.ChainFunc(h,
		mw.WithRecover(),
		mw.WithRequestID(),
		c.clientIP,
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		c.login,
		c.loginEmail,
		mw.WithLogging(),
	)
}

func (c chains) authed(h http.HandlerFunc) http.Handler {
	return mw.ChainFunc(h,
		mw.WithRecover(),
		mw.WithRequestID(),
		c.clientIP,
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		c.api,
		mw.RequireAuth(c.verifier),
		mw.WithLogging(),
	)
}

func (c chains) admin(h http.HandlerFunc) http.Handler {
	return mw.ChainFunc(h,
		mw.WithRecover(),
		mw.WithRequestID(),
		c.clientIP,
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		c.api,
		mw.RequireAuth(c.verifier),
		mw.RequireRole(c.adminRole),
		mw.WithLogging(),
	)
}

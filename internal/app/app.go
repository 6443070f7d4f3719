// Package app wires the identity core, the HTTP layer and the ambient stack
// into one handler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/rolbazli/internal/config"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	httpx "github.com/dropDatabas3/rolbazli/internal/http"
	mw "github.com/dropDatabas3/rolbazli/internal/http/middlewares"
	adminctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/rolbazli/internal/http/controllers/health"
	"github.com/dropDatabas3/rolbazli/internal/http/router"
	adminsvc "github.com/dropDatabas3/rolbazli/internal/http/services/admin"
	authsvc "github.com/dropDatabas3/rolbazli/internal/http/services/auth"
	healthsvc "github.com/dropDatabas3/rolbazli/internal/http/services/health"
	"github.com/dropDatabas3/rolbazli/internal/identity"
	jwtx "github.com/dropDatabas3/rolbazli/internal/jwt"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/rate"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
)

// Deps holds what main opens before wiring.
type Deps struct {
	Store repository.Store
	// Registry defaults to prometheus.DefaultRegisterer; Gatherer must serve
	// the same metrics.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
	// Redis is used when rate.backend is redis. Built from config when nil.
	Redis rdb.Cmdable
}

// App is the wired service.
type App struct {
	Handler http.Handler

	Issuer *jwtx.Issuer
	Roles  identity.RoleRegistry
	Access identity.AccessController
	Auth   identity.Authenticator

	closers []func() error
}

// New builds the core services and the HTTP handler from cfg.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	log := logger.From(ctx).With(logger.Layer("app"), logger.Op("New"))

	if deps.Store == nil {
		return nil, fmt.Errorf("app: nil store")
	}

	issuer, err := jwtx.NewIssuer(jwtx.IssuerConfig{
		SigningKey: []byte(cfg.JWT.SigningKey),
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
	})
	if err != nil {
		return nil, err
	}

	policy, err := PasswordPolicy(cfg)
	if err != nil {
		return nil, err
	}
	deletePolicy, err := identity.ParseDeletePolicy(cfg.RBAC.DeletePolicy)
	if err != nil {
		return nil, err
	}

	a := &App{Issuer: issuer}
	a.Roles = identity.NewRoleRegistry(identity.RoleRegistryDeps{
		Roles:        deps.Store.Roles(),
		DeletePolicy: deletePolicy,
	})
	a.Access = identity.NewAccessController(identity.AccessControllerDeps{
		Users:          deps.Store.Users(),
		Roles:          deps.Store.Roles(),
		Memberships:    deps.Store.Memberships(),
		DefaultRole:    cfg.RBAC.DefaultRole,
		PasswordPolicy: policy,
	})
	a.Auth = identity.NewAuthenticator(identity.AuthenticatorDeps{Users: deps.Store.Users()})

	lim := a.limiters(cfg, deps.Redis)
	clientIP, err := mw.NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	metricsCfg := httpx.MetricsConfig{Registry: deps.Registry, Gatherer: deps.Gatherer}
	if p, ok := deps.Store.(interface{ Pool() *pgxpool.Pool }); ok {
		metricsCfg.Pool = p.Pool
	}
	metricsHandler, err := httpx.RegisterMetrics(metricsCfg)
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	authSvcs := authsvc.NewServices(authsvc.Deps{
		Authenticator:    a.Auth,
		Access:           a.Access,
		Issuer:           issuer,
		UnifyLoginErrors: cfg.Auth.UnifyLoginErrors,
	})
	adminSvcs := adminsvc.NewServices(adminsvc.Deps{Roles: a.Roles, Access: a.Access})
	healthSvcs := healthsvc.NewServices(healthsvc.Deps{Store: deps.Store, Version: cfg.App.Version})

	handler := router.New(router.Deps{
		Account:           authctrl.NewControllers(authSvcs),
		Admin:             adminctrl.NewControllers(adminSvcs),
		Health:            healthctrl.NewControllers(healthSvcs),
		Verifier:          issuer,
		AdminRole:         cfg.RBAC.AdminRole,
		LoginLimiter:      lim.login,
		LoginEmailLimiter: lim.loginEmail,
		APILimiter:        lim.api,
		ClientIP:          clientIP,
		CORSOrigins:       cfg.Server.CORSAllowedOrigins,
		Metrics:           metricsHandler,
	})
	a.Handler = httpx.WithMetrics(handler)

	log.Info("app wired",
		logger.Driver(deps.Store.Driver()),
		logger.Bool("rate_limit", cfg.Rate.Enabled),
		logger.String("rate_backend", cfg.Rate.Backend),
	)
	return a, nil
}

// Close releases what New opened.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type limiterSet struct {
	login, loginEmail, api rate.Limiter
}

// limiters builds one limiter per budget. All nil when rate limiting is off.
func (a *App) limiters(cfg *config.Config, client rdb.Cmdable) limiterSet {
	if !cfg.Rate.Enabled {
		return limiterSet{}
	}
	build := func(w config.Window) rate.Limiter {
		return rate.NewMemoryLimiter(w.Limit, w.Window)
	}
	if cfg.Rate.Backend == "redis" {
		if client == nil {
			c := rdb.NewClient(&rdb.Options{
				Addr:     cfg.Rate.Redis.Addr,
				Password: cfg.Rate.Redis.Password,
				DB:       cfg.Rate.Redis.DB,
			})
			a.closers = append(a.closers, c.Close)
			client = c
		}
		build = func(w config.Window) rate.Limiter {
			return rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, w.Limit, w.Window)
		}
	}
	return limiterSet{
		login:      build(cfg.Rate.Login),
		loginEmail: build(cfg.Rate.LoginEmail),
		api:        build(cfg.Rate.API),
	}
}

// PasswordPolicy builds the registration policy from the security section.
func PasswordPolicy(cfg *config.Config) (password.Policy, error) {
	pp := cfg.Security.PasswordPolicy
	p := password.Policy{
		MinLength:     pp.MinLength,
		RequireUpper:  pp.RequireUpper,
		RequireLower:  pp.RequireLower,
		RequireDigit:  pp.RequireDigit,
		RequireSymbol: pp.RequireSymbol,
	}
	if path := cfg.Security.PasswordBlacklistPath; path != "" {
		bl, err := password.LoadBlacklist(path)
		if err != nil {
			return p, fmt.Errorf("app: password blacklist: %w", err)
		}
		p.Blacklist = bl
	}
	return p, nil
}

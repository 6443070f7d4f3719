package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/dropDatabas3/rolbazli/internal/app"
	"github.com/dropDatabas3/rolbazli/internal/bootstrap"
	"github.com/dropDatabas3/rolbazli/internal/config"
	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	httpx "github.com/dropDatabas3/rolbazli/internal/http"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/store"
	"github.com/dropDatabas3/rolbazli/internal/store/adapters/pg"

	// adapters register themselves from init()
	_ "github.com/dropDatabas3/rolbazli/internal/store/adapters/memory"
)

func main() {
	configPath := flag.String("config", os.Getenv("ROLBAZLI_CONFIG"), "Path to YAML config (optional)")
	promptAdmin := flag.Bool("bootstrap-admin", false, "Prompt for the first admin when none is configured")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	if err := run(*configPath, *promptAdmin); err != nil {
		if errors.Is(err, errs.ErrConfiguration) {
			fmt.Fprintf(os.Stderr, "configuration error:\n%v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "rolbazli: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(configPath string, promptAdmin bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L().With(logger.Component("main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		Driver:   cfg.Storage.Driver,
		DSN:      cfg.Storage.DSN,
		MaxConns: cfg.Storage.MaxConns,
		MinConns: cfg.Storage.MinConns,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	if pgStore, ok := st.(*pg.Store); ok && cfg.Storage.AutoMigrate {
		if err := pg.Migrate(ctx, pgStore.Pool(), pg.MigrateUp); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	seed := append([]string{cfg.RBAC.AdminRole, cfg.RBAC.DefaultRole}, cfg.RBAC.SeedRoles...)
	if _, err := bootstrap.EnsureRoles(ctx, st.Roles(), seed); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	a, err := app.New(ctx, cfg, app.Deps{Store: st})
	if err != nil {
		return err
	}
	defer a.Close()

	adminCfg := bootstrap.AdminConfig{
		Users:     st.Users(),
		Access:    a.Access,
		Email:     cfg.Bootstrap.AdminEmail,
		Password:  cfg.Bootstrap.AdminPassword,
		Name:      cfg.Bootstrap.AdminName,
		AdminRole: cfg.RBAC.AdminRole,
	}
	if promptAdmin && term.IsTerminal(int(os.Stdin.Fd())) {
		adminCfg.Prompt = &bootstrap.Prompter{
			In:           os.Stdin,
			Out:          os.Stdout,
			ReadPassword: func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) },
		}
	}
	if _, err := bootstrap.EnsureAdmin(ctx, adminCfg); err != nil {
		log.Warn("admin bootstrap failed", logger.Err(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpx.Serve(gctx, httpx.ServerConfig{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			IdleTimeout:     cfg.Server.IdleTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}, a.Handler)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		return nil
	})

	log.Info("rolbazli started",
		logger.String("addr", cfg.Server.Addr),
		logger.Driver(st.Driver()),
		logger.String("env", cfg.App.Env),
	)
	return g.Wait()
}

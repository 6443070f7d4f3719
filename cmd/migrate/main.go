package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/rolbazli/internal/config"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/store"
	"github.com/dropDatabas3/rolbazli/internal/store/adapters/pg"
)

func main() {
	configPath := flag.String("config", os.Getenv("ROLBAZLI_CONFIG"), "Path to YAML config (optional)")
	dsn := flag.String("dsn", "", "Postgres DSN; skips the config file when set")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-config path | -dsn url] [up|down|status|redo]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	_ = godotenv.Load()

	if err := run(*configPath, *dsn, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dsn, arg string) error {
	if arg == "" {
		arg = string(pg.MigrateUp)
	}
	action, err := pg.ParseMigrationAction(arg)
	if err != nil {
		return err
	}

	logCfg := logger.Config{ServiceName: "rolbazli-migrate"}
	if dsn == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dsn = cfg.Storage.DSN
		logCfg.Env, logCfg.Level = cfg.App.Env, cfg.Log.Level
	}
	logger.Init(logCfg)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	st, err := pg.Connect(ctx, store.Config{
		Driver:   "postgres",
		DSN:      dsn,
		MaxConns: 2,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	return pg.Migrate(ctx, st.Pool(), action)
}

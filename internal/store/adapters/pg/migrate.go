package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	migrations "github.com/dropDatabas3/rolbazli/migrations/postgres"
)

// MigrationAction names a goose command.
type MigrationAction string

const (
	MigrateUp     MigrationAction = "up"
	MigrateDown   MigrationAction = "down"
	MigrateStatus MigrationAction = "status"
	MigrateRedo   MigrationAction = "redo"
)

// ParseMigrationAction accepts up, down, status and redo.
func ParseMigrationAction(s string) (MigrationAction, error) {
	switch a := MigrationAction(strings.ToLower(strings.TrimSpace(s))); a {
	case MigrateUp, MigrateDown, MigrateStatus, MigrateRedo:
		return a, nil
	}
	return "", fmt.Errorf("pg: unknown migration action %q (want up|down|status|redo)", s)
}

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// Migrate runs the embedded migrations against pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, action MigrationAction) error {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Component("pg.migrate"), logger.Op(string(action)))

	gooseMu.Lock()
	defer gooseMu.Unlock()

	// goose speaks database/sql; the wrapper shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Warn("close migration handle", logger.Err(err))
		}
	}(db)

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLogger{log: log.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("pg: goose dialect: %w", err)
	}

	var err error
	switch action {
	case MigrateUp:
		err = goose.UpContext(ctx, db, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, ".")
	case MigrateRedo:
		err = goose.RedoContext(ctx, db, ".")
	default:
		return fmt.Errorf("pg: unknown migration action %q", action)
	}
	if err != nil {
		return fmt.Errorf("pg: migrate %s: %w", action, err)
	}

	if v, verr := goose.GetDBVersionContext(ctx, db); verr == nil {
		log.Info("migrations applied", logger.Int("version", int(v)))
	}
	return nil
}

// gooseLogger routes goose output through zap. Fatalf must not exit the process.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (g *gooseLogger) Fatalf(format string, v ...any) { g.log.Errorf(strings.TrimSpace(format), v...) }
func (g *gooseLogger) Printf(format string, v ...any) { g.log.Infof(strings.TrimSpace(format), v...) }

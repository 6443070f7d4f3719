// Package pg implements the credential store on PostgreSQL with pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
	"github.com/dropDatabas3/rolbazli/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Open(ctx context.Context, cfg store.Config) (repository.Store, error) {
	return Connect(ctx, cfg)
}

// SQLSTATE codes the adapter translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Store implements repository.Store.
type Store struct {
	pool   *pgxpool.Pool
	params password.Params
	decoy  *password.Decoy
}

// Connect opens a pool and checks it with a ping.
func Connect(ctx context.Context, cfg store.Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return New(pool, cfg.Hash), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, params password.Params) *Store {
	if params == (password.Params{}) {
		params = password.Default
	}
	return &Store{pool: pool, params: params, decoy: password.NewDecoy(params)}
}

// Pool exposes the pool to migrations and metrics.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Driver() string { return "postgres" }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Users() repository.UserRepository             { return &userRepo{pool: s.pool, params: s.params, decoy: s.decoy} }
func (s *Store) Roles() repository.RoleRepository             { return &roleRepo{pool: s.pool} }
func (s *Store) Memberships() repository.MembershipRepository { return &membershipRepo{pool: s.pool} }

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// validID filters ids that would make postgres fail the uuid cast; such an id
// cannot match any row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

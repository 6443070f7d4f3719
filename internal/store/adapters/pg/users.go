package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
)

type userRepo struct {
	pool   *pgxpool.Pool
	params password.Params
	decoy  *password.Decoy
}

const userColumns = `id::text, email, name, phone_number, phone_number_confirmed,
	two_factor_enabled, access_failed_count, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.PhoneNumberConfirmed,
		&u.TwoFactorEnabled, &u.AccessFailedCount, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	const query = `SELECT ` + userColumns + ` FROM app_user WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	const query = `SELECT ` + userColumns + ` FROM app_user WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if in.Email == "" {
		return nil, repository.ErrInvalidInput
	}
	hash, err := password.Hash(r.params, in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}

	const query = `
		INSERT INTO app_user (email, name, password_hash, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, query, in.Email, in.Name, hash, in.PhoneNumber))
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepo) CheckPassword(ctx context.Context, userID, plain string) (bool, error) {
	if !validID(userID) {
		return false, repository.ErrNotFound
	}
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT password_hash FROM app_user WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		return false, notFoundOr(err)
	}
	return password.Verify(plain, hash), nil
}

func (r *userRepo) CheckDecoyPassword(_ context.Context, plain string) {
	r.decoy.Verify(plain)
}

func (r *userRepo) List(ctx context.Context) ([]repository.User, error) {
	const query = `SELECT ` + userColumns + ` FROM app_user ORDER BY lower(email)`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []repository.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) RecordLoginFailure(ctx context.Context, userID string) error {
	return r.exec1(ctx, `UPDATE app_user SET access_failed_count = access_failed_count + 1 WHERE id = $1`, userID)
}

func (r *userRepo) ResetLoginFailures(ctx context.Context, userID string) error {
	return r.exec1(ctx, `UPDATE app_user SET access_failed_count = 0 WHERE id = $1`, userID)
}

// exec1 runs a single-row update keyed by user id.
func (r *userRepo) exec1(ctx context.Context, query, userID string) error {
	if !validID(userID) {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

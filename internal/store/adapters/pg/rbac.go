package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

// ─── Roles ───

type roleRepo struct{ pool *pgxpool.Pool }

func scanRole(row pgx.Row) (*repository.Role, error) {
	var role repository.Role
	if err := row.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
		return nil, notFoundOr(err)
	}
	return &role, nil
}

func (r *roleRepo) GetByID(ctx context.Context, id string) (*repository.Role, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanRole(r.pool.QueryRow(ctx, `SELECT id::text, name, created_at FROM app_role WHERE id = $1`, id))
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*repository.Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT id::text, name, created_at FROM app_role WHERE name = $1`, name))
}

func (r *roleRepo) Exists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM app_role WHERE name = $1)`, name).Scan(&ok)
	return ok, err
}

func (r *roleRepo) Create(ctx context.Context, name string) (*repository.Role, error) {
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	const query = `INSERT INTO app_role (name) VALUES ($1) RETURNING id::text, name, created_at`
	role, err := scanRole(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) Rename(ctx context.Context, id, newName string) (*repository.Role, error) {
	if newName == "" {
		return nil, repository.ErrInvalidInput
	}
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	const query = `UPDATE app_role SET name = $2 WHERE id = $1 RETURNING id::text, name, created_at`
	role, err := scanRole(r.pool.QueryRow(ctx, query, id, newName))
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) Delete(ctx context.Context, id string, cascade bool) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	if !cascade {
		// user_role.role_id is ON DELETE RESTRICT, so the check and the
		// delete are one atomic statement.
		return deleteRole(ctx, r.pool, id)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_role WHERE role_id = $1`, id); err != nil {
			return err
		}
		return deleteRole(ctx, tx, id)
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func deleteRole(ctx context.Context, db execer, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM app_role WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return repository.ErrRoleInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *roleRepo) List(ctx context.Context) ([]repository.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name, created_at FROM app_role ORDER BY name COLLATE "C"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []repository.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func (r *roleRepo) CountMembers(ctx context.Context, roleID string) (int, error) {
	if !validID(roleID) {
		return 0, nil
	}
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM user_role WHERE role_id = $1`, roleID).Scan(&n)
	return n, err
}

// ─── Memberships ───

type membershipRepo struct{ pool *pgxpool.Pool }

func (m *membershipRepo) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	if !validID(userID) {
		return []string{}, nil
	}
	const query = `
		SELECT r.name
		FROM user_role ur
		JOIN app_role r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name COLLATE "C"`
	rows, err := m.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (m *membershipRepo) AddUserToRole(ctx context.Context, userID, roleName string) error {
	if !validID(userID) {
		return repository.ErrNotFound
	}
	// The CTE reports whether the role exists so that "already assigned"
	// (no row inserted, role found) differs from "no such role".
	const query = `
		WITH r AS (SELECT id FROM app_role WHERE name = $2),
		ins AS (
			INSERT INTO user_role (user_id, role_id)
			SELECT $1::uuid, r.id FROM r
			ON CONFLICT DO NOTHING
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM r)`
	var roleFound bool
	if err := m.pool.QueryRow(ctx, query, userID, roleName).Scan(&roleFound); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return repository.ErrNotFound
		}
		return err
	}
	if !roleFound {
		return repository.ErrNotFound
	}
	return nil
}

func (m *membershipRepo) RemoveUserFromRole(ctx context.Context, userID, roleName string) error {
	const query = `
		WITH r AS (SELECT id FROM app_role WHERE name = $2),
		del AS (
			DELETE FROM user_role ur USING r
			WHERE ur.user_id = $1::uuid AND ur.role_id = r.id
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM r)`
	if !validID(userID) {
		// nothing to remove, but still report an unknown role
		userID = "00000000-0000-0000-0000-000000000000"
	}
	var roleFound bool
	if err := m.pool.QueryRow(ctx, query, userID, roleName).Scan(&roleFound); err != nil {
		return err
	}
	if !roleFound {
		return repository.ErrNotFound
	}
	return nil
}

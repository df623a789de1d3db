package postgres

import (
	"context"

	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

const (
	insertUserSQL = `
		INSERT INTO users (id, email, password_hash, full_name, role, company_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)`

	selectUserSQL = `
		SELECT id, email, password_hash, full_name, role, COALESCE(company_id, ''), active, created_at, updated_at
		FROM users`

	updatePasswordSQL = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	setActiveSQL      = `UPDATE users SET active = $2, updated_at = now() WHERE id = $1`
	updateRoleSQL     = `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`
	deleteUserSQL     = `DELETE FROM users WHERE id = $1`
)

var _ users.Repo = (*UserRepo)(nil)

// UserRepo is the pgx-backed implementation of users.Repo. The pool is
// created and closed by the process entry point.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	_, err := r.pool.Exec(ctx, insertUserSQL,
		user.ID, user.Email, user.PasswordHash, user.FullName, string(user.Role),
		user.CompanyID, user.Active, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.ErrDuplicateEmail
		}
		return errs.Dependency(err, "insert user")
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, selectUserSQL+` WHERE email = $1`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, selectUserSQL+` WHERE id = $1`, id)
}

func (r *UserRepo) getOne(ctx context.Context, query, arg string) (*users.User, error) {
	var user users.User
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &role,
		&user.CompanyID, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, errs.Dependency(err, "select user")
	}
	user.Role = users.RoleType(role)
	return &user, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, updatePasswordSQL, id, passwordHash)
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, setActiveSQL, id, active)
}

func (r *UserRepo) UpdateRole(ctx context.Context, id string, role users.RoleType) error {
	return r.execOne(ctx, updateRoleSQL, id, string(role))
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, deleteUserSQL, id)
}

func (r *UserRepo) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return errs.Dependency(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

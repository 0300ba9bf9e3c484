package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/internal/domain/repository"
)

// Postgres unique_violation
const pgUniqueViolation = "23505"

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, ident *entity.Identity, documentLeg func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, cross_ref, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ident.Email, ident.PasswordHash, ident.CrossRef, ident.Role)
	if err := row.Scan(&ident.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	ident.Active = true

	if documentLeg != nil {
		if err := documentLeg(ctx); err != nil {
			return err // deferred rollback undoes the insert
		}
	}
	return tx.Commit(ctx)
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	return r.get(ctx, `
		SELECT id, email, password_hash, cross_ref, role, active, deleted_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *IdentityRepository) GetByCrossRef(ctx context.Context, crossRef string) (*entity.Identity, error) {
	return r.get(ctx, `
		SELECT id, email, password_hash, cross_ref, role, active, deleted_at
		FROM users
		WHERE cross_ref = $1
	`, crossRef)
}

func (r *IdentityRepository) get(ctx context.Context, query string, arg any) (*entity.Identity, error) {
	ident := &entity.Identity{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&ident.ID, &ident.Email, &ident.PasswordHash, &ident.CrossRef,
		&ident.Role, &ident.Active, &ident.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ident, nil
}

func (r *IdentityRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *IdentityRepository) UpdateEmail(ctx context.Context, crossRef, email string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET email = $1 WHERE cross_ref = $2`, email, crossRef)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, crossRef, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE cross_ref = $2`, passwordHash, crossRef)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) Deactivate(ctx context.Context, crossRef string, documentLeg func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE users SET active = false, deleted_at = now()
		WHERE cross_ref = $1 AND active = true
	`, crossRef)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if documentLeg != nil {
		if err := documentLeg(ctx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *IdentityRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE active = true`).Scan(&n)
	return n, err
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)

package lockout

import (
	"context"
	"errors"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo stores attempts in the login_attempts table. Update serializes per
// username through SELECT ... FOR UPDATE under a bounded lock_timeout.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, username string) (*Attempt, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT username, failed_count, lock_until
		FROM login_attempts WHERE username = $1
	`, username)
	var a Attempt
	var lockUntil *time.Time
	if err := row.Scan(&a.Username, &a.FailedCount, &lockUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, db.MapError(err)
	}
	a.LockUntil = lockUntil
	return &a, nil
}

func (r *Repo) Update(ctx context.Context, username string, fn func(cur *Attempt) Attempt) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.MapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `SET LOCAL lock_timeout = '2s'`); err != nil {
		return db.MapError(err)
	}

	// Row locks cannot serialize concurrent first failures (no row exists
	// yet), so serialize on the username itself. Released at commit/rollback;
	// the wait is bounded by lock_timeout.
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, username); err != nil {
		return db.MapError(err)
	}

	var cur *Attempt
	row := tx.QueryRow(ctx, `
		SELECT username, failed_count, lock_until
		FROM login_attempts WHERE username = $1
	`, username)
	var a Attempt
	var lockUntil *time.Time
	switch err = row.Scan(&a.Username, &a.FailedCount, &lockUntil); {
	case err == nil:
		a.LockUntil = lockUntil
		cur = &a
	case errors.Is(err, pgx.ErrNoRows):
		// first failure for this username
	default:
		return db.MapError(err)
	}

	next := fn(cur)
	if _, err = tx.Exec(ctx, `
		INSERT INTO login_attempts (username, failed_count, lock_until)
		VALUES ($1,$2,$3)
		ON CONFLICT (username) DO UPDATE SET
			failed_count = EXCLUDED.failed_count,
			lock_until   = EXCLUDED.lock_until
	`, username, next.FailedCount, next.LockUntil); err != nil {
		return db.MapError(err)
	}

	return db.MapError(tx.Commit(ctx))
}

func (r *Repo) Delete(ctx context.Context, username string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE username = $1`, username)
	return db.MapError(err)
}

package catalog

import (
	"context"
	"errors"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1,$2)
		RETURNING id
	`, name, description).Scan(&id)
	if err != nil {
		return 0, db.MapError(err)
	}
	return id, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Category, error) {
	return r.get(ctx, `
		SELECT id, name, description, created_at
		FROM categories WHERE id = $1
	`, id)
}

func (r *Repo) GetByName(ctx context.Context, name string) (*Category, error) {
	return r.get(ctx, `
		SELECT id, name, description, created_at
		FROM categories WHERE name = $1
	`, name)
}

func (r *Repo) get(ctx context.Context, query string, arg any) (*Category, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, db.MapError(err)
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFoundf("category %d", id)
	}
	return nil
}

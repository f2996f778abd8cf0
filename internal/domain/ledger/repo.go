package ledger

import (
	"context"
	"errors"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed Store. Per-item serialization comes from
// SELECT ... FOR UPDATE on the inventory row; lock_timeout bounds the wait so
// contention surfaces as ErrBusy instead of hanging.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) CreateItem(ctx context.Context, it Item, t Transaction) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, db.MapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO inventory (name, quantity, min_level, unit, category_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, it.Name, it.Quantity, it.MinLevel, it.Unit, it.CategoryID).Scan(&id)
	if err != nil {
		return 0, db.MapError(err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO transactions (item_id, transaction_type, quantity, reason, user_id)
		VALUES ($1,$2,$3,$4,$5)
	`, id, string(t.Type), t.Quantity, t.Reason, t.ActorID); err != nil {
		return 0, db.MapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, db.MapError(err)
	}
	return id, nil
}

func (r *Repo) Mutate(ctx context.Context, itemID int64, fn func(cur Item) (Mutation, error)) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.MapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `SET LOCAL lock_timeout = '2s'`); err != nil {
		return db.MapError(err)
	}

	var cur Item
	err = tx.QueryRow(ctx, `
		SELECT id, name, quantity, min_level, unit, category_id, created_at, updated_at
		FROM inventory WHERE id = $1
		FOR UPDATE
	`, itemID).Scan(&cur.ID, &cur.Name, &cur.Quantity, &cur.MinLevel, &cur.Unit, &cur.CategoryID, &cur.CreatedAt, &cur.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("item %d", itemID)
		}
		return db.MapError(err)
	}

	m, err := fn(cur)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE inventory
		SET name=$2, quantity=$3, min_level=$4, unit=$5, category_id=$6, updated_at=now()
		WHERE id=$1
	`, itemID, m.Item.Name, m.Item.Quantity, m.Item.MinLevel, m.Item.Unit, m.Item.CategoryID); err != nil {
		return db.MapError(err)
	}

	if m.Tx != nil {
		if _, err = tx.Exec(ctx, `
			INSERT INTO transactions (item_id, transaction_type, quantity, reason, user_id)
			VALUES ($1,$2,$3,$4,$5)
		`, itemID, string(m.Tx.Type), m.Tx.Quantity, m.Tx.Reason, m.Tx.ActorID); err != nil {
			return db.MapError(err)
		}
	}

	return db.MapError(tx.Commit(ctx))
}

func (r *Repo) DeleteItem(ctx context.Context, itemID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, itemID)
	if err != nil {
		return db.MapError(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFoundf("item %d", itemID)
	}
	return nil
}

func (r *Repo) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, quantity, min_level, unit, category_id, created_at, updated_at
		FROM inventory WHERE id = $1
	`, itemID)
	var it Item
	if err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.MinLevel, &it.Unit, &it.CategoryID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, db.MapError(err)
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, quantity, min_level, unit, category_id, created_at, updated_at
		FROM inventory
		ORDER BY name
	`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.MinLevel, &it.Unit, &it.CategoryID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListTransactions joins item and actor names for display. Left joins keep
// rows whose item has been deleted: the audit trail outlives the item.
func (r *Repo) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.item_id, t.transaction_type, t.quantity, t.reason, t.user_id, t.created_at,
		       COALESCE(i.name, ''), COALESCE(u.username, '')
		FROM transactions t
		LEFT JOIN inventory i ON t.item_id = i.id
		LEFT JOIN users u ON t.user_id = u.id
		ORDER BY t.created_at DESC, t.id DESC
	`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.ItemID, &typ, &t.Quantity, &t.Reason, &t.ActorID, &t.CreatedAt, &t.ItemName, &t.ActorName); err != nil {
			return nil, err
		}
		t.Type = TxType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory WHERE category_id = $1
	`, categoryID).Scan(&n)
	return n, db.MapError(err)
}

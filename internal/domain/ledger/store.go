package ledger

import "context"

// Mutation is what a mutate callback asks the store to apply to an item.
// Item is the full post-mutation state; Tx, when non-nil, is appended to the
// transaction log in the same atomic unit.
type Mutation struct {
	Item Item
	Tx   *Transaction
}

// Store is the persistence boundary of the ledger. Implementations must make
// each call atomic and serialize Mutate calls per item id: the callback runs
// inside the critical section with the current row, and the returned mutation
// (quantity update + optional transaction append) commits as one unit or not
// at all. A store that cannot acquire the item within its wait bound returns
// apperr.ErrBusy.
type Store interface {
	// CreateItem inserts the item and its initial transaction atomically,
	// returning the new item id.
	CreateItem(ctx context.Context, it Item, tx Transaction) (int64, error)

	// Mutate runs fn with the current state of the item under the per-item
	// lock and applies the returned mutation. fn returning an error aborts
	// with no change. Returns apperr.ErrNotFound for unknown ids.
	Mutate(ctx context.Context, itemID int64, fn func(cur Item) (Mutation, error)) error

	// DeleteItem removes the item row. Its transactions are retained.
	DeleteItem(ctx context.Context, itemID int64) error

	GetItem(ctx context.Context, itemID int64) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)

	// ListTransactions returns the full audit trail, most recent first,
	// joined with item and actor names where those still resolve.
	ListTransactions(ctx context.Context) ([]Transaction, error)

	// CountByCategory reports how many live items reference the category.
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

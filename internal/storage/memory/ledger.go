package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
)

type LedgerStore struct{ s *Store }

func (l *LedgerStore) CreateItem(ctx context.Context, it ledger.Item, tx ledger.Transaction) (int64, error) {
	if err := l.s.lock(ctx); err != nil {
		return 0, err
	}
	defer l.s.unlock()

	now := time.Now()
	l.s.nextItemID++
	it.ID = l.s.nextItemID
	it.CreatedAt = now
	it.UpdatedAt = now
	l.s.items[it.ID] = it

	tx.ItemID = it.ID
	l.appendTx(tx, now)
	return it.ID, nil
}

func (l *LedgerStore) Mutate(ctx context.Context, itemID int64, fn func(cur ledger.Item) (ledger.Mutation, error)) error {
	if err := l.s.lock(ctx); err != nil {
		return err
	}
	defer l.s.unlock()

	cur, ok := l.s.items[itemID]
	if !ok {
		return apperr.NotFoundf("item %d", itemID)
	}
	m, err := fn(cur)
	if err != nil {
		return err
	}

	now := time.Now()
	next := m.Item
	next.ID = itemID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = now
	l.s.items[itemID] = next

	if m.Tx != nil {
		tx := *m.Tx
		tx.ItemID = itemID
		l.appendTx(tx, now)
	}
	return nil
}

func (l *LedgerStore) appendTx(tx ledger.Transaction, now time.Time) {
	l.s.nextTxID++
	tx.ID = l.s.nextTxID
	tx.CreatedAt = now
	l.s.txs = append(l.s.txs, tx)
}

func (l *LedgerStore) DeleteItem(ctx context.Context, itemID int64) error {
	if err := l.s.lock(ctx); err != nil {
		return err
	}
	defer l.s.unlock()

	if _, ok := l.s.items[itemID]; !ok {
		return apperr.NotFoundf("item %d", itemID)
	}
	delete(l.s.items, itemID)
	return nil
}

func (l *LedgerStore) GetItem(ctx context.Context, itemID int64) (*ledger.Item, error) {
	if err := l.s.lock(ctx); err != nil {
		return nil, err
	}
	defer l.s.unlock()

	it, ok := l.s.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (l *LedgerStore) ListItems(ctx context.Context) ([]ledger.Item, error) {
	if err := l.s.lock(ctx); err != nil {
		return nil, err
	}
	defer l.s.unlock()

	out := make([]ledger.Item, 0, len(l.s.items))
	for _, it := range l.s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (l *LedgerStore) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	if err := l.s.lock(ctx); err != nil {
		return nil, err
	}
	defer l.s.unlock()

	out := make([]ledger.Transaction, len(l.s.txs))
	copy(out, l.s.txs)
	// Newest first; ids are monotonic so they break timestamp ties.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	for i := range out {
		if it, ok := l.s.items[out[i].ItemID]; ok {
			out[i].ItemName = it.Name
		}
		if u, ok := l.s.users[out[i].ActorID]; ok {
			out[i].ActorName = u.Username
		}
	}
	return out, nil
}

func (l *LedgerStore) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	if err := l.s.lock(ctx); err != nil {
		return 0, err
	}
	defer l.s.unlock()

	var n int64
	for _, it := range l.s.items {
		if it.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// Package memory provides mutex-guarded in-memory implementations of every
// domain Store. One Store holds all relations so listing joins resolve the
// same way they do in Postgres; tests and the dev backend run against it.
package memory

import (
	"context"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/catalog"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/credentials"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/lockout"
)

// lockWait bounds how long any operation waits for the store lock before
// giving up with ErrBusy, mirroring the Postgres lock_timeout.
const lockWait = 2 * time.Second

type Store struct {
	sem chan struct{}

	items      map[int64]ledger.Item
	txs        []ledger.Transaction
	categories map[int64]catalog.Category
	users      map[int64]credentials.User
	attempts   map[string]lockout.Attempt

	nextItemID     int64
	nextTxID       int64
	nextCategoryID int64
	nextUserID     int64
}

func New() *Store {
	return &Store{
		sem:        make(chan struct{}, 1),
		items:      make(map[int64]ledger.Item),
		categories: make(map[int64]catalog.Category),
		users:      make(map[int64]credentials.User),
		attempts:   make(map[string]lockout.Attempt),
	}
}

// lock acquires the store with a bounded wait. All state access goes through
// it, which gives the same serialization a single global write lock would.
func (s *Store) lock(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(lockWait):
		return apperr.Busyf("memory store lock wait exceeded")
	}
}

func (s *Store) unlock() { <-s.sem }

// Views over the shared state, one per domain Store interface.

func (s *Store) Ledger() *LedgerStore          { return &LedgerStore{s} }
func (s *Store) Catalog() *CatalogStore        { return &CatalogStore{s} }
func (s *Store) Credentials() *CredentialStore { return &CredentialStore{s} }
func (s *Store) LoginAttempts() *LockoutStore  { return &LockoutStore{s} }

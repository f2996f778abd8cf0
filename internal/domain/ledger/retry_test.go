package ledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/storage/memory"
)

// busyStore reports contention for the first busyFor Mutate calls, then
// delegates to a real memory store.
type busyStore struct {
	ledger.Store
	busyFor int
	calls   int
}

func (b *busyStore) Mutate(ctx context.Context, itemID int64, fn func(cur ledger.Item) (ledger.Mutation, error)) error {
	b.calls++
	if b.calls <= b.busyFor {
		return apperr.Busyf("simulated lock timeout")
	}
	return b.Store.Mutate(ctx, itemID, fn)
}

func TestMutation_RetriesOnBusy(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := memory.New()
	store := &busyStore{Store: m.Ledger(), busyFor: 2}
	svc := ledger.NewService(store, log)
	ctx := context.Background()

	seed := ledger.NewService(m.Ledger(), log)
	id, err := seed.CreateItem(ctx, "Gauze", 10, 2, "pack", 1, 1)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}

	newQty, err := svc.Deduct(ctx, id, 4, 1)
	if err != nil {
		t.Fatalf("expected deduct to succeed after retries, got %v", err)
	}
	if newQty != 6 {
		t.Errorf("expected quantity 6, got %d", newQty)
	}
	if store.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", store.calls)
	}
}

func TestMutation_BusySurfacesAfterBoundedRetries(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := memory.New()
	store := &busyStore{Store: m.Ledger(), busyFor: 100}
	svc := ledger.NewService(store, log)
	ctx := context.Background()

	seed := ledger.NewService(m.Ledger(), log)
	id, _ := seed.CreateItem(ctx, "Gauze", 10, 2, "pack", 1, 1)

	_, err := svc.Deduct(ctx, id, 1, 1)
	if !errors.Is(err, apperr.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}
	if store.calls < 2 {
		t.Errorf("expected retries before surfacing, got %d attempts", store.calls)
	}
	if store.calls > 10 {
		t.Errorf("retries are unbounded: %d attempts", store.calls)
	}

	it, _ := seed.GetItem(ctx, id)
	if it.Quantity != 10 {
		t.Errorf("failed mutation must leave state untouched, quantity is %d", it.Quantity)
	}
}

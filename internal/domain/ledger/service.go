package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/metrics"
	"github.com/sethvargo/go-retry"
)

// Busy mutations are retried a few times before the error surfaces; the
// backoff stays short because every critical section is a bounded transaction.
const (
	busyRetries = 3
	busyBackoff = 50 * time.Millisecond
)

// Service owns item quantities and the append-only transaction log. Every
// quantity change goes through here and lands together with exactly one
// transaction row, so that an item's quantity always equals the sum of the
// signed deltas of its history.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// CreateItem registers a new item and logs its initial stock as an ADD
// transaction in the same atomic unit.
func (s *Service) CreateItem(ctx context.Context, name string, quantity, minLevel int64, unit string, categoryID int64, actorID int64) (int64, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return 0, apperr.Validationf("item name is required")
	}
	if unit == "" {
		return 0, apperr.Validationf("unit is required")
	}
	if quantity < 0 {
		return 0, apperr.Validationf("quantity cannot be negative")
	}
	if minLevel < 0 {
		return 0, apperr.Validationf("minimum level cannot be negative")
	}

	it := Item{
		Name:       name,
		Quantity:   quantity,
		MinLevel:   minLevel,
		Unit:       unit,
		CategoryID: categoryID,
	}
	tx := Transaction{
		Type:     TxAdd,
		Quantity: quantity,
		Reason:   ReasonInitialStock,
		ActorID:  actorID,
	}
	id, err := s.store.CreateItem(ctx, it, tx)
	if err != nil {
		return 0, err
	}
	metrics.StockMutations.WithLabelValues("create").Inc()
	s.log.Info("item created", "item_id", id, "name", name, "quantity", quantity, "actor_id", actorID)
	return id, nil
}

// SetItem replaces every editable field. When the new quantity differs from
// the current one, exactly one INCREASE or DECREASE transaction with the
// absolute difference is appended; identical quantities append nothing.
func (s *Service) SetItem(ctx context.Context, itemID int64, name string, quantity, minLevel int64, unit string, categoryID int64, actorID int64) error {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return apperr.Validationf("item name is required")
	}
	if unit == "" {
		return apperr.Validationf("unit is required")
	}
	if quantity < 0 {
		return apperr.Validationf("quantity cannot be negative")
	}
	if minLevel < 0 {
		return apperr.Validationf("minimum level cannot be negative")
	}

	err := s.mutate(ctx, itemID, func(cur Item) (Mutation, error) {
		next := cur
		next.Name = name
		next.Quantity = quantity
		next.MinLevel = minLevel
		next.Unit = unit
		next.CategoryID = categoryID

		m := Mutation{Item: next}
		if quantity != cur.Quantity {
			t := TxIncrease
			if quantity < cur.Quantity {
				t = TxDecrease
			}
			diff := quantity - cur.Quantity
			if diff < 0 {
				diff = -diff
			}
			m.Tx = &Transaction{
				ItemID:   itemID,
				Type:     t,
				Quantity: diff,
				Reason:   ReasonAdjustment,
				ActorID:  actorID,
			}
		}
		return m, nil
	})
	if err != nil {
		return err
	}
	metrics.StockMutations.WithLabelValues("set").Inc()
	return nil
}

// Deduct lowers the quantity by amount, clamping at zero. The DECREASE
// transaction records the magnitude actually applied, which is smaller than
// the requested amount when the clamp kicks in.
func (s *Service) Deduct(ctx context.Context, itemID int64, amount int64, actorID int64) (int64, error) {
	if amount <= 0 {
		return 0, apperr.Validationf("deduction amount must be positive")
	}

	var newQty int64
	err := s.mutate(ctx, itemID, func(cur Item) (Mutation, error) {
		applied := amount
		if applied > cur.Quantity {
			applied = cur.Quantity
		}
		next := cur
		next.Quantity = cur.Quantity - applied
		newQty = next.Quantity

		m := Mutation{Item: next}
		if applied > 0 {
			m.Tx = &Transaction{
				ItemID:   itemID,
				Type:     TxDecrease,
				Quantity: applied,
				Reason:   ReasonStockUsage,
				ActorID:  actorID,
			}
		}
		return m, nil
	})
	if err != nil {
		return 0, err
	}
	metrics.StockMutations.WithLabelValues("deduct").Inc()
	return newQty, nil
}

// DeleteItem removes the item. Historical transactions stay in the log and
// keep referencing the absent item id.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	metrics.StockMutations.WithLabelValues("delete").Inc()
	s.log.Info("item deleted", "item_id", itemID)
	return nil
}

func (s *Service) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	return s.store.GetItem(ctx, itemID)
}

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.store.ListItems(ctx)
}

func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// LowStock returns the items at or below their minimum level.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, it := range items {
		if it.LowStock() {
			out = append(out, it)
		}
	}
	return out, nil
}

// CountByCategory is used by the catalog to guard category deletion.
func (s *Service) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	return s.store.CountByCategory(ctx, categoryID)
}

// mutate runs a store mutation, retrying a bounded number of times when the
// store reports contention. Anything other than ErrBusy surfaces immediately.
func (s *Service) mutate(ctx context.Context, itemID int64, fn func(cur Item) (Mutation, error)) error {
	b := retry.WithMaxRetries(busyRetries, retry.NewConstant(busyBackoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.store.Mutate(ctx, itemID, fn)
		if errors.Is(err, apperr.ErrBusy) {
			metrics.BusyRetries.Inc()
			s.log.Warn("ledger mutation busy, retrying", "item_id", itemID)
			return retry.RetryableError(err)
		}
		return err
	})
}

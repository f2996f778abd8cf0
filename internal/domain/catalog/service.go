package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
)

type Store interface {
	// Create inserts a category; duplicate names fail with apperr.ErrConflict.
	Create(ctx context.Context, name, description string) (int64, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id int64) error
}

// ItemCounter is the one question the catalog asks the stock ledger: how many
// live items reference a category. Cross-component access stays id-based.
type ItemCounter interface {
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

type Service struct {
	store Store
	items ItemCounter
	log   *slog.Logger
}

func NewService(store Store, items ItemCounter, log *slog.Logger) *Service {
	return &Service{store: store, items: items, log: log}
}

// EnsureDefault resolves the id of the default category, creating it when the
// seed is missing. Callers hold on to the returned id instead of assuming a
// magic value.
func (s *Service) EnsureDefault(ctx context.Context) (int64, error) {
	c, err := s.store.GetByName(ctx, DefaultName)
	if err != nil {
		return 0, err
	}
	if c != nil {
		return c.ID, nil
	}
	return s.store.Create(ctx, DefaultName, DefaultDescription)
}

func (s *Service) AddCategory(ctx context.Context, name, description string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperr.Validationf("category name is required")
	}
	id, err := s.store.Create(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return 0, err
	}
	s.log.Info("category added", "category_id", id, "name", name)
	return id, nil
}

// DeleteCategory refuses to delete a category any item still references. The
// check is advisory: it reads the ledger's live item set at call time, so a
// racing CreateItem can slip in, which is accepted at this scale.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	n, err := s.items.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.InUsef("category %d is referenced by %d items", id, n)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("category deleted", "category_id", id)
	return nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.store.List(ctx)
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/catalog"
)

type CatalogStore struct{ s *Store }

func (c *CatalogStore) Create(ctx context.Context, name, description string) (int64, error) {
	if err := c.s.lock(ctx); err != nil {
		return 0, err
	}
	defer c.s.unlock()

	for _, existing := range c.s.categories {
		if existing.Name == name {
			return 0, apperr.Conflictf("category %q", name)
		}
	}
	c.s.nextCategoryID++
	cat := catalog.Category{
		ID:          c.s.nextCategoryID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	c.s.categories[cat.ID] = cat
	return cat.ID, nil
}

func (c *CatalogStore) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	if err := c.s.lock(ctx); err != nil {
		return nil, err
	}
	defer c.s.unlock()

	cat, ok := c.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &cat, nil
}

func (c *CatalogStore) GetByName(ctx context.Context, name string) (*catalog.Category, error) {
	if err := c.s.lock(ctx); err != nil {
		return nil, err
	}
	defer c.s.unlock()

	for _, cat := range c.s.categories {
		if cat.Name == name {
			return &cat, nil
		}
	}
	return nil, nil
}

func (c *CatalogStore) List(ctx context.Context) ([]catalog.Category, error) {
	if err := c.s.lock(ctx); err != nil {
		return nil, err
	}
	defer c.s.unlock()

	out := make([]catalog.Category, 0, len(c.s.categories))
	for _, cat := range c.s.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *CatalogStore) Delete(ctx context.Context, id int64) error {
	if err := c.s.lock(ctx); err != nil {
		return err
	}
	defer c.s.unlock()

	if _, ok := c.s.categories[id]; !ok {
		return apperr.NotFoundf("category %d", id)
	}
	delete(c.s.categories, id)
	return nil
}

package catalog

import "time"

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Default category every item falls back to when created without an explicit
// one. Seeded by migration; its id is resolved once at startup.
const (
	DefaultName        = "General"
	DefaultDescription = "General inventory items"
)

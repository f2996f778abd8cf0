package lockout

import "context"

// Store persists login attempts. Update must serialize per username so that
// concurrent failures never lose an increment: fn runs inside the critical
// section with the current record (nil when none exists) and its result is
// upserted atomically.
type Store interface {
	Get(ctx context.Context, username string) (*Attempt, error)
	Update(ctx context.Context, username string, fn func(cur *Attempt) Attempt) error
	Delete(ctx context.Context, username string) error
}

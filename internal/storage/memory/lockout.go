package memory

import (
	"context"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/lockout"
)

type LockoutStore struct{ s *Store }

func (l *LockoutStore) Get(ctx context.Context, username string) (*lockout.Attempt, error) {
	if err := l.s.lock(ctx); err != nil {
		return nil, err
	}
	defer l.s.unlock()

	a, ok := l.s.attempts[username]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (l *LockoutStore) Update(ctx context.Context, username string, fn func(cur *lockout.Attempt) lockout.Attempt) error {
	if err := l.s.lock(ctx); err != nil {
		return err
	}
	defer l.s.unlock()

	var cur *lockout.Attempt
	if a, ok := l.s.attempts[username]; ok {
		cur = &a
	}
	next := fn(cur)
	next.Username = username
	l.s.attempts[username] = next
	return nil
}

func (l *LockoutStore) Delete(ctx context.Context, username string) error {
	if err := l.s.lock(ctx); err != nil {
		return err
	}
	defer l.s.unlock()

	delete(l.s.attempts, username)
	return nil
}

package lockout

import (
	"context"
	"log/slog"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/metrics"
)

const (
	// MaxFailures is the number of consecutive failed logins that locks the
	// account.
	MaxFailures = 5
	// LockWindow is how long a locked account stays locked.
	LockWindow = 5 * time.Minute
)

// Service is the account-lockout state machine. Expired locks are observed
// lazily by CheckLock; the record is only mutated by RecordFailure and
// deleted by RecordSuccess.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// CheckLock reports whether the username is currently locked and for how much
// longer. An expired lock reads as unlocked but stays on the record until the
// next success or failure.
func (s *Service) CheckLock(ctx context.Context, username string) (LockStatus, error) {
	a, err := s.store.Get(ctx, username)
	if err != nil {
		return LockStatus{}, err
	}
	if a == nil || a.LockUntil == nil {
		return LockStatus{}, nil
	}
	now := s.now()
	if a.LockUntil.After(now) {
		return LockStatus{Locked: true, Remaining: a.LockUntil.Sub(now)}, nil
	}
	return LockStatus{}, nil
}

// RecordSuccess wipes all failure history for the username.
func (s *Service) RecordSuccess(ctx context.Context, username string) error {
	return s.store.Delete(ctx, username)
}

// RecordFailure counts one failed login. Reaching MaxFailures sets the lock
// and resets the counter to zero, so an account whose lock expires unnoticed
// gets a fresh strike budget instead of re-locking on its next failure.
func (s *Service) RecordFailure(ctx context.Context, username string) error {
	var locked bool
	err := s.store.Update(ctx, username, func(cur *Attempt) Attempt {
		if cur == nil {
			return Attempt{Username: username, FailedCount: 1}
		}
		next := *cur
		next.FailedCount++
		if next.FailedCount >= MaxFailures {
			until := s.now().Add(LockWindow)
			next.LockUntil = &until
			next.FailedCount = 0
			locked = true
		}
		return next
	})
	if err != nil {
		return err
	}
	metrics.LoginFailures.Inc()
	if locked {
		metrics.Lockouts.Inc()
		s.log.Warn("account locked", "username", username, "window", LockWindow)
	}
	return nil
}

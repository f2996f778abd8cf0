package credentials

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	// Create inserts the user and returns its id; duplicate usernames fail
	// with apperr.ErrConflict.
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Service manages the username/credential registry. It is deliberately
// unaware of lockout state: callers sequence CheckLock / Authenticate /
// RecordSuccess / RecordFailure themselves.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperr.Validationf("username is required")
	}
	if password == "" {
		return apperr.Validationf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	id, err := s.store.Create(ctx, username, string(hash))
	if err != nil {
		return err
	}
	s.log.Info("user registered", "user_id", id, "username", username)
	return nil
}

// Authenticate returns the identity for a valid username/password pair and
// nil when either is wrong. Callers must not distinguish the two cases in
// anything user-visible.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return &Identity{ID: u.ID, Username: u.Username}, nil
}

package memory

import (
	"context"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/credentials"
)

type CredentialStore struct{ s *Store }

func (c *CredentialStore) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	if err := c.s.lock(ctx); err != nil {
		return 0, err
	}
	defer c.s.unlock()

	for _, u := range c.s.users {
		if u.Username == username {
			return 0, apperr.Conflictf("username %q", username)
		}
	}
	c.s.nextUserID++
	u := credentials.User{
		ID:           c.s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	c.s.users[u.ID] = u
	return u.ID, nil
}

func (c *CredentialStore) GetByUsername(ctx context.Context, username string) (*credentials.User, error) {
	if err := c.s.lock(ctx); err != nil {
		return nil, err
	}
	defer c.s.unlock()

	for _, u := range c.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

// Package sessions holds bearer-token sessions in memory. Tokens are opaque
// uuids; losing the process logs everyone out, which is fine at this scale.
package sessions

import (
	"sync"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/credentials"
	"github.com/google/uuid"
)

type Manager struct {
	mu      sync.RWMutex
	byToken map[string]credentials.Identity
}

func New() *Manager {
	return &Manager{byToken: make(map[string]credentials.Identity)}
}

func (m *Manager) Create(id credentials.Identity) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.byToken[token] = id
	m.mu.Unlock()
	return token
}

func (m *Manager) Lookup(token string) (credentials.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byToken[token]
	return id, ok
}

func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.byToken, token)
	m.mu.Unlock()
}

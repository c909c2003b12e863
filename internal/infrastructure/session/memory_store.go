package session

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/materiales-portal/internal/application/auth"
)

var _ auth.RevocationStore = (*MemoryStore)(nil)

// MemoryStore almacén de revocación en memoria. Solo válido con una instancia.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiración
	now     func() time.Time
}

// NewMemoryStore construye el almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke marca el jti como revocado durante ttl.
func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = s.now().Add(ttl)
	return nil
}

// IsRevoked consulta el jti y purga la entrada si ya expiró.
func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

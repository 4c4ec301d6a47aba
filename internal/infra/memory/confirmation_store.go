package memory

import (
	"context"
	"sync"
	"time"

	"coding-relay-console/internal/domain"
)

// ConfirmationStore keeps pending overwrites in process memory.
type ConfirmationStore struct {
	clock func() time.Time

	mu      sync.Mutex
	pending map[string]pendingConfirmation
}

type pendingConfirmation struct {
	confirmation domain.Confirmation
	expiresAt    time.Time
}

func NewConfirmationStore() *ConfirmationStore {
	return &ConfirmationStore{clock: time.Now, pending: make(map[string]pendingConfirmation)}
}

func (s *ConfirmationStore) Save(_ context.Context, c domain.Confirmation, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for token, p := range s.pending {
		if !p.expiresAt.After(now) {
			delete(s.pending, token)
		}
	}
	s.pending[c.Token] = pendingConfirmation{confirmation: c, expiresAt: now.Add(ttl)}
	return nil
}

func (s *ConfirmationStore) Peek(_ context.Context, token string) (domain.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[token]
	if !ok || !p.expiresAt.After(s.clock()) {
		return domain.Confirmation{}, domain.ErrConfirmationNotFound
	}
	return p.confirmation, nil
}

func (s *ConfirmationStore) Take(_ context.Context, token string) (domain.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[token]
	if !ok {
		return domain.Confirmation{}, domain.ErrConfirmationNotFound
	}
	delete(s.pending, token)
	if !p.expiresAt.After(s.clock()) {
		return domain.Confirmation{}, domain.ErrConfirmationNotFound
	}
	return p.confirmation, nil
}

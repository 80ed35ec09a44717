package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-memory map with TTL-based
// expiration. Expired entries are evicted lazily when a Get observes them
// and in bulk by Cleanup.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryStore creates a new in-memory session store. A non-positive ttl
// falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Put unconditionally stores sess, replacing any prior entry.
func (s *MemoryStore) Put(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	dup := sess.Clone()
	dup.LastActiveAt = now
	dup.ExpiresAt = now.Add(s.ttl)
	if prior, ok := s.sessions[sess.ID]; ok {
		dup.CreatedAt = prior.CreatedAt
	}
	s.sessions[sess.ID] = dup
	return nil
}

// Get retrieves a session by ID. Returns nil, nil if not found or expired.
// An expired entry is removed as a side effect of being observed, so it is
// indistinguishable from a key that never existed.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil //nolint:nilnil // Store contract: nil,nil for not-found
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, nil //nolint:nilnil // Store contract: nil,nil for expired
	}
	return sess.Clone(), nil
}

// Touch updates LastActiveAt and extends ExpiresAt by the store's TTL.
func (s *MemoryStore) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}

	now := time.Now()
	sess.LastActiveAt = now
	sess.ExpiresAt = now.Add(s.ttl)
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// List returns non-expired sessions matching f, most recently active first.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	result := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			continue
		}
		if f.ModelName != "" && sess.ModelName != f.ModelName {
			continue
		}
		result = append(result, sess.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastActiveAt.After(result[j].LastActiveAt)
	})
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

// Cleanup removes expired sessions.
func (s *MemoryStore) Cleanup(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// StartCleanupRoutine starts a background goroutine that periodically removes
// expired sessions. The goroutine is stopped when Close is called.
func (s *MemoryStore) StartCleanupRoutine(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = s.Cleanup(ctx)
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit.
// It is safe to call Close even if StartCleanupRoutine was never called.
func (s *MemoryStore) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)

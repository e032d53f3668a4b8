// Package store keeps form sessions between requests.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"demandas/internal/form/session"
	id "demandas/pkg/domain"
	"demandas/pkg/platform/sentinel"
)

// DefaultTTL is how long an untouched form session is kept.
const DefaultTTL = 2 * time.Hour

// InMemoryStore keeps sessions in process memory. Sessions expire TTL after
// their last update.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[id.FormID]session.Snapshot
	engine   *session.Engine
	ttl      time.Duration
	now      func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithTTL sets the idle expiry.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock sets the clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

// NewInMemory builds an empty store. Restored sessions use engine.
func NewInMemory(engine *session.Engine, opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[id.FormID]session.Snapshot),
		engine:   engine,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new session.
func (s *InMemoryStore) Create(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; ok {
		return fmt.Errorf("form session %s: %w", sess.ID, sentinel.ErrConflict)
	}
	s.sessions[sess.ID] = sess.Snapshot()
	return nil
}

// FindByID returns a copy of the session.
func (s *InMemoryStore) FindByID(_ context.Context, formID id.FormID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.live(formID)
	if err != nil {
		return nil, err
	}
	return session.Restore(snap, s.engine), nil
}

// Execute loads the session, applies fn and saves the result, all under the
// store lock. When fn fails the stored session is left unchanged.
func (s *InMemoryStore) Execute(_ context.Context, formID id.FormID, fn func(*session.Session) error) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.live(formID)
	if err != nil {
		return nil, err
	}
	sess := session.Restore(snap, s.engine)
	if err := fn(sess); err != nil {
		return nil, err
	}
	s.sessions[formID] = sess.Snapshot()
	return sess, nil
}

// Delete removes a session.
func (s *InMemoryStore) Delete(_ context.Context, formID id.FormID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.live(formID); err != nil {
		return err
	}
	delete(s.sessions, formID)
	return nil
}

// live returns the snapshot of an unexpired session. Expired entries are
// dropped on access. Callers hold mu.
func (s *InMemoryStore) live(formID id.FormID) (session.Snapshot, error) {
	snap, ok := s.sessions[formID]
	if !ok {
		return session.Snapshot{}, sentinel.ErrNotFound
	}
	if s.now().After(snap.UpdatedAt.Add(s.ttl)) {
		delete(s.sessions, formID)
		return session.Snapshot{}, fmt.Errorf("form session %s: %w", formID, sentinel.ErrExpired)
	}
	return snap, nil
}

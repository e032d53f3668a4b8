package memory

import (
	"context"
	"sort"
	"sync"

	id "demandas/pkg/domain"
	audit "demandas/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Publish lets the store stand in for a Kafka publisher.
func (s *InMemoryStore) Publish(ctx context.Context, events ...audit.Event) error {
	for _, e := range events {
		if err := s.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ListByDocument returns the events of one document, oldest first.
func (s *InMemoryStore) ListByDocument(_ context.Context, docID id.DocumentID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []audit.Event{}
	for _, e := range s.events {
		if e.DocumentID == docID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns the most recent N events across all documents.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := append([]audit.Event{}, s.events...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

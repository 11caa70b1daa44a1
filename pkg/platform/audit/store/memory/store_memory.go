package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"bizhealth/pkg/domain"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

type key struct {
	kind  audit.Kind
	runID domain.RunID
}

// InMemoryStore keeps the latest event per kind and run. It serves as a
// Sink and a Reader in tests and single-process deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	latest map[key]audit.Event
	all    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{latest: make(map[key]audit.Event)}
}

func (s *InMemoryStore) Name() string { return "memory" }

func (s *InMemoryStore) Publish(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[key{event.Kind, event.RunID}] = event
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, kind audit.Kind, runID domain.RunID) (audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.latest[key{kind, runID}]
	if !ok {
		return audit.Event{}, fmt.Errorf("%s for %s: %w", kind, runID, sentinel.ErrNotFound)
	}
	return ev, nil
}

// ListAll returns every event published, oldest first.
func (s *InMemoryStore) ListAll() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.all...)
}

// Clear drops all events.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = make(map[key]audit.Event)
	s.all = nil
}

// ListRecent returns up to limit events of kind, newest first, optionally
// filtered by status.
func (s *InMemoryStore) ListRecent(_ context.Context, kind audit.Kind, statuses []string, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for i := len(s.all) - 1; i >= 0 && len(out) < limit; i-- {
		ev := s.all[i]
		if ev.Kind != kind {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, ev.Status) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

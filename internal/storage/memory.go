package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps encoded documents in memory. It is used by tests and
// as a stand-in when no output directory is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, name string, v any) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = data
	return "memory://" + name, nil
}

func (s *MemoryStore) Get(_ context.Context, name string, v any) error {
	s.mu.RLock()
	data, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return notFound(name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return corrupt(name, err)
	}
	return nil
}

// PutRaw stores pre-encoded bytes, which lets tests plant malformed
// documents.
func (s *MemoryStore) PutRaw(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), data...)
}

// Names lists stored document names in no particular order.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for n := range s.docs {
		names = append(names, n)
	}
	return names
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizhealth/pkg/domain"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

const keyPrefix = "bh"

// DefaultTTL bounds how long a cached record is served.
const DefaultTTL = 24 * time.Hour

// Store caches the latest record per kind and run under
// bh:<kind>:<runID>. Entries expire after the configured TTL, after which
// reads fall through to durable storage.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New creates a cache store. A non-positive ttl uses DefaultTTL.
func New(client redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Name() string { return "redis" }

func key(kind audit.Kind, runID domain.RunID) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, runID)
}

func (s *Store) Publish(ctx context.Context, event audit.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode cached record: %w", err)
	}
	if err := s.client.Set(ctx, key(event.Kind, event.RunID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache %s for %s: %w: %v", event.Kind, event.RunID, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind audit.Kind, runID domain.RunID) (audit.Event, error) {
	data, err := s.client.Get(ctx, key(kind, runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return audit.Event{}, fmt.Errorf("%s for %s: %w", kind, runID, sentinel.ErrNotFound)
	}
	if err != nil {
		return audit.Event{}, fmt.Errorf("read cached %s for %s: %w: %v", kind, runID, sentinel.ErrUnavailable, err)
	}
	var ev audit.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return audit.Event{}, fmt.Errorf("decode cached %s for %s: %w", kind, runID, sentinel.ErrCorrupt)
	}
	return ev, nil
}

// Evict removes the cached record, if any.
func (s *Store) Evict(ctx context.Context, kind audit.Kind, runID domain.RunID) error {
	return s.client.Del(ctx, key(kind, runID)).Err()
}

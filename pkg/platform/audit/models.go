// Package audit carries finalized pipeline records (quality audits and
// anomaly reports) from the services that produce them to secondary sinks:
// durable storage, caches and event streams.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bizhealth/pkg/domain"
	"bizhealth/pkg/platform/sentinel"
)

// Kind classifies a record so sinks can route it (topic, table partition,
// cache key prefix).
type Kind string

const (
	// KindQualityAudit is a finalized PipelineQualityAudit.
	KindQualityAudit Kind = "quality_audit"
	// KindAnomalyReport is a cross-phase anomaly report.
	KindAnomalyReport Kind = "anomaly_report"
)

// IsValid reports whether k is a supported record kind.
func (k Kind) IsValid() bool {
	return k == KindQualityAudit || k == KindAnomalyReport
}

// Event is one finalized record. Payload holds the record's JSON encoding
// exactly as written to the primary audit file.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Kind      Kind            `json:"kind"`
	RunID     domain.RunID    `json:"run_id"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEvent encodes record as the payload of a new event.
func NewEvent(kind Kind, runID domain.RunID, status string, record any, now time.Time) (Event, error) {
	if !kind.IsValid() {
		return Event{}, fmt.Errorf("unsupported audit kind %q", kind)
	}
	if runID.IsNil() {
		return Event{}, errors.New("audit event requires a run id")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		RunID:     runID,
		Status:    status,
		Timestamp: now.UTC(),
		Payload:   payload,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload for %s: %w: %v", e.Kind, e.RunID, sentinel.ErrCorrupt, err)
	}
	return nil
}

// Sink receives finalized records.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}

// Reader looks up the latest record of a kind for a run. Implementations
// return sentinel.ErrNotFound when they hold no such record.
type Reader interface {
	Get(ctx context.Context, kind Kind, runID domain.RunID) (Event, error)
}

// Lister returns recent records of a kind, newest first, optionally
// filtered by status.
type Lister interface {
	ListRecent(ctx context.Context, kind Kind, statuses []string, limit int) ([]Event, error)
}

// ChainReader consults readers in order and returns the first hit. A
// reader that misses or is unavailable is skipped; the last non-miss error
// is returned when every reader fails.
type ChainReader []Reader

func (c ChainReader) Get(ctx context.Context, kind Kind, runID domain.RunID) (Event, error) {
	lastErr := fmt.Errorf("%s for %s: %w", kind, runID, sentinel.ErrNotFound)
	for _, r := range c {
		if r == nil {
			continue
		}
		ev, err := r.Get(ctx, kind, runID)
		if err == nil {
			return ev, nil
		}
		if ctx.Err() != nil {
			return Event{}, ctx.Err()
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			lastErr = err
		}
	}
	return Event{}, lastErr
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bizhealth/pkg/domain"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_records (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	status      TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL,
	payload     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS pipeline_records_kind_run_idx
	ON pipeline_records (kind, run_id, recorded_at DESC);
`

// Store persists finalized records in Postgres. It is both a Sink and a
// Reader; every publish appends a row and reads return the newest row for
// the run.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return "postgres" }

// EnsureSchema creates the records table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure pipeline_records schema: %w", err)
	}
	return nil
}

// Publish inserts the event. Redelivery of the same event id is ignored.
func (s *Store) Publish(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO pipeline_records (id, kind, run_id, status, recorded_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Kind),
		event.RunID.String(),
		event.Status,
		event.Timestamp,
		[]byte(event.Payload),
	)
	if err != nil {
		return fmt.Errorf("insert pipeline record: %w", err)
	}
	return nil
}

// Get returns the newest record of kind for runID.
func (s *Store) Get(ctx context.Context, kind audit.Kind, runID domain.RunID) (audit.Event, error) {
	query := `
		SELECT id, kind, run_id, status, recorded_at, payload
		FROM pipeline_records
		WHERE kind = $1 AND run_id = $2
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, string(kind), runID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Event{}, fmt.Errorf("%s for %s: %w", kind, runID, sentinel.ErrNotFound)
	}
	if err != nil {
		return audit.Event{}, fmt.Errorf("query pipeline record: %w", err)
	}
	return ev, nil
}

// ListRecent returns up to limit records of kind, newest first. When
// statuses is non-empty only records with one of those statuses are
// returned.
func (s *Store) ListRecent(ctx context.Context, kind audit.Kind, statuses []string, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, kind, run_id, status, recorded_at, payload
		FROM pipeline_records
		WHERE kind = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY recorded_at DESC
		LIMIT $3
	`
	if statuses == nil {
		statuses = []string{}
	}
	rows, err := s.db.QueryContext(ctx, query, string(kind), pq.Array(statuses), limit)
	if err != nil {
		return nil, fmt.Errorf("query pipeline records: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pipeline record: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pipeline records: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (audit.Event, error) {
	var (
		ev      audit.Event
		id      uuid.UUID
		kind    string
		runID   string
		payload []byte
	)
	if err := row.Scan(&id, &kind, &runID, &ev.Status, &ev.Timestamp, &payload); err != nil {
		return audit.Event{}, err
	}
	ev.ID = id
	ev.Kind = audit.Kind(kind)
	ev.RunID = domain.RunID(runID)
	ev.Payload = payload
	ev.Timestamp = ev.Timestamp.UTC()
	return ev, nil
}

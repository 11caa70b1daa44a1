//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bizhealth/pkg/domain"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/audit/store/postgres"
	"bizhealth/pkg/platform/sentinel"
	"bizhealth/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "pipeline_records"))
}

func (s *PostgresStoreSuite) event(kind audit.Kind, runID domain.RunID, status string, at time.Time) audit.Event {
	ev, err := audit.NewEvent(kind, runID, status, map[string]string{"status": status}, at)
	s.Require().NoError(err)
	return ev
}

func (s *PostgresStoreSuite) TestGetReturnsNewestRecord() {
	ctx := context.Background()
	runID := domain.RunID("BH-20240115-093000")
	t0 := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	s.Require().NoError(s.store.Publish(ctx, s.event(audit.KindQualityAudit, runID, "FAIL", t0)))
	s.Require().NoError(s.store.Publish(ctx, s.event(audit.KindQualityAudit, runID, "PASS", t0.Add(time.Minute))))

	got, err := s.store.Get(ctx, audit.KindQualityAudit, runID)
	s.Require().NoError(err)
	s.Equal("PASS", got.Status)

	var payload map[string]string
	s.Require().NoError(got.Decode(&payload))
	s.Equal("PASS", payload["status"])
}

func (s *PostgresStoreSuite) TestGetMissIsNotFound() {
	_, err := s.store.Get(context.Background(), audit.KindAnomalyReport, "BH-20240115-093000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPublishIsIdempotentPerEvent() {
	ctx := context.Background()
	ev := s.event(audit.KindAnomalyReport, "BH-20240115-093000", "failed", time.Now())
	s.Require().NoError(s.store.Publish(ctx, ev))
	s.Require().NoError(s.store.Publish(ctx, ev))

	list, err := s.store.ListRecent(ctx, audit.KindAnomalyReport, nil, 10)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresStoreSuite) TestListRecentFiltersByStatus() {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	for i, status := range []string{"PASS", "FAIL", "NEEDS_REVIEW", "FAIL"} {
		at := t0.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.Publish(ctx, s.event(audit.KindQualityAudit, domain.NewRunID(at), status, at)))
	}

	failed, err := s.store.ListRecent(ctx, audit.KindQualityAudit, []string{"FAIL"}, 10)
	s.Require().NoError(err)
	s.Require().Len(failed, 2)
	s.True(failed[0].Timestamp.After(failed[1].Timestamp))

	all, err := s.store.ListRecent(ctx, audit.KindQualityAudit, nil, 3)
	s.Require().NoError(err)
	s.Len(all, 3)
}

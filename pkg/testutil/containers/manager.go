//go:build integration

// Package containers starts shared backing services for integration tests.
// Containers are started once per test binary and reaped by Ryuk, so suites
// must isolate themselves (FlushAll, Truncate, unique topics).
package containers

import (
	"context"
	"sync"
	"testing"
)

// Manager lazily starts one container per backing service.
type Manager struct {
	redisOnce    sync.Once
	redis        *RedisContainer
	postgresOnce sync.Once
	postgres     *PostgresContainer
	redpandaOnce sync.Once
	redpanda     *RedpandaContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() { manager = &Manager{} })
	return manager
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() { m.redis = startRedis(context.Background(), t) })
	if m.redis == nil {
		t.Fatal("redis container unavailable")
	}
	return m.redis
}

func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.postgresOnce.Do(func() { m.postgres = startPostgres(context.Background(), t) })
	if m.postgres == nil {
		t.Fatal("postgres container unavailable")
	}
	return m.postgres
}

func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.redpandaOnce.Do(func() { m.redpanda = startRedpanda(context.Background(), t) })
	if m.redpanda == nil {
		t.Fatal("redpanda container unavailable")
	}
	return m.redpanda
}

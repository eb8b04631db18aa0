// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package lock provides a Redis-backed advisory lock used to keep ingestion
// jobs from running twice concurrently across worker processes. Grounded on
// the acquire/renew/release shape of the teacher's job scheduler lock.
package lock

import (
	"context"
	"time"

	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
	"github.com/sk-pkg/util"
	"go.uber.org/zap"
)

// Manager acquires and releases named advisory locks.
type Manager struct {
	redis  *redis.Manager
	logger *logger.Manager
}

// New creates a lock Manager over a Redis connection.
func New(redis *redis.Manager, logger *logger.Manager) *Manager {
	return &Manager{redis: redis, logger: logger}
}

// Acquire attempts to set a named lock with the given TTL, returning true
// only when this caller won the lock.
//
// Parameters:
//   - name: lock scope, e.g. "ingestion:process:<id>".
//   - ttl: lock lifetime.
//
// Returns:
//   - bool: true when the lock was newly acquired.
func (m *Manager) Acquire(name string, ttl time.Duration) bool {
	key := m.key(name)
	ok, err := m.redis.Do("SET", key, "locked", "EX", int(ttl.Seconds()), "NX")
	return ok != nil && err == nil
}

// Renew extends a held lock's TTL. Call periodically from a long-running
// job to avoid losing the lock mid-execution.
func (m *Manager) Renew(name string, ttl time.Duration) {
	if _, err := m.redis.Do("EXPIRE", m.key(name), int(ttl.Seconds())); err != nil {
		m.logger.Error(context.Background(), "lock renew failed", zap.String("name", name), zap.Error(err))
	}
}

// Release deletes a held lock.
func (m *Manager) Release(ctx context.Context, name string) {
	if ok, err := m.redis.Del(m.key(name)); !ok && err != nil {
		m.logger.Error(ctx, "lock release failed", zap.String("name", name), zap.Error(err))
	}
}

func (m *Manager) key(name string) string {
	return util.SpliceStr(m.redis.Prefix, "logintel:lock:", name)
}

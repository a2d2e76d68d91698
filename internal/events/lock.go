package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockKey = "pipeline:run-lock"

// RunLock is a Redis SETNX lock preventing two pipeline runs from
// overlapping (a cron tick firing while the previous run is still going
// would otherwise race the purge step). With no Redis client the lock
// always grants — single-process deployments don't need it.
type RunLock struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRunLock returns a RunLock; rdb may be nil to disable locking.
func NewRunLock(rdb *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{rdb: rdb, ttl: ttl}
}

// Acquire tries to take the lock. It returns false when another run holds it.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	ok, err := l.rdb.SetNX(ctx, lockKey, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *RunLock) Release(ctx context.Context) {
	if l == nil || l.rdb == nil {
		return
	}
	l.rdb.Del(ctx, lockKey)
}

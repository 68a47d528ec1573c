// Package lock provides a Redis-backed per-order update lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-orders/internal/core"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "inventory-orders:order-lock:"

// NewRedisClient parses url (redis://...) and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return rdb, nil
}

// OrderLocker implements core.OrderLocker with a single non-retrying redislock attempt.
type OrderLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

// NewOrderLocker returns a locker whose locks expire after ttl if never released.
func NewOrderLocker(rdb redislock.RedisClient, ttl time.Duration) *OrderLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &OrderLocker{locker: redislock.New(rdb), ttl: ttl}
}

// LockOrder obtains the lock for orderID or fails fast with core.ErrOrderLocked.
func (l *OrderLocker) LockOrder(ctx context.Context, orderID string) (func(context.Context) error, error) {
	lk, err := l.locker.Obtain(ctx, keyPrefix+orderID, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, core.ErrOrderLocked
	}
	if err != nil {
		return nil, fmt.Errorf("obtain order lock %s: %w", orderID, err)
	}

	return func(ctx context.Context) error {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release order lock %s: %w", orderID, err)
		}
		return nil
	}, nil
}

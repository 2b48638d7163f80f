package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appledger "github.com/exportops/backend/internal/application/ledger"
	"github.com/exportops/backend/internal/infrastructure/config"
)

// ErrLockNotObtained is returned when a lease cannot be acquired within MaxWait.
var ErrLockNotObtained = errors.New("lock not obtained")

// RedisLocker leases a Redis lock per key on top of a local KeyedLocker, so
// multiple instances sharing one database still serialize writers per
// ledger key. The local mutex keeps goroutines of the same process from
// hammering Redis for a lease they cannot win.
type RedisLocker struct {
	local  *KeyedLocker
	client *redislock.Client
	cfg    config.LockConfig
	logger *zap.Logger
}

// NewRedisLocker creates a RedisLocker from the given Redis client.
func NewRedisLocker(rdb *redis.Client, cfg config.LockConfig, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		local:  NewKeyedLocker(),
		client: redislock.New(rdb),
		cfg:    cfg,
		logger: logger.Named("lock"),
	}
}

// WithLock runs fn while holding both the local mutex and the Redis lease
// for the key.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return l.local.WithLock(ctx, key, func(ctx context.Context) error {
		acquireCtx, cancel := context.WithTimeout(ctx, l.cfg.MaxWait)
		defer cancel()

		lease, err := l.client.Obtain(acquireCtx, key, l.cfg.LeaseTTL, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(l.cfg.RetryInterval),
		})
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrLockNotObtained, key)
		}
		if err != nil {
			return fmt.Errorf("failed to obtain lock %s: %w", key, err)
		}

		defer func() {
			if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
				l.logger.Warn("failed to release lock",
					zap.String("key", key),
					zap.Error(releaseErr),
				)
			}
		}()

		return fn(ctx)
	})
}

// New returns the locker implementation selected by the configuration. When
// distributed locking is disabled the in-process KeyedLocker is used alone.
func New(cfg config.LockConfig, rdb *redis.Client, logger *zap.Logger) appledger.Locker {
	if cfg.Distributed && rdb != nil {
		return NewRedisLocker(rdb, cfg, logger)
	}
	return NewKeyedLocker()
}

// Ensure RedisLocker implements the application Locker port
var _ appledger.Locker = (*RedisLocker)(nil)

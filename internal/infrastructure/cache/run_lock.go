package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// DefaultRunLockKey guards reconciliation runs across replicas.
const DefaultRunLockKey = "storefront:sync:run"

// RedisRunLock is a cluster-wide mutual exclusion for sync runs backed by redislock.
// The lock expires after ttl so a crashed replica cannot hold it forever; a live
// holder refreshes it every ttl/3 until release.
type RedisRunLock struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// RunLockOption configures a RedisRunLock
type RunLockOption func(*RedisRunLock)

// WithRunLockKey overrides DefaultRunLockKey.
func WithRunLockKey(key string) RunLockOption {
	return func(l *RedisRunLock) {
		l.key = key
	}
}

// WithRunLockLogger sets the logger.
func WithRunLockLogger(logger *zap.Logger) RunLockOption {
	return func(l *RedisRunLock) {
		l.logger = logger
	}
}

// NewRedisRunLock creates a lock on an existing client.
func NewRedisRunLock(client redis.UniversalClient, ttl time.Duration, opts ...RunLockOption) *RedisRunLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	l := &RedisRunLock{
		locker: redislock.New(client),
		key:    DefaultRunLockKey,
		ttl:    ttl,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Acquire tries once to take the lock. acquired is false, with a nil error, when
// another holder owns it. release is nil unless acquired is true.
func (l *RedisRunLock) Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error) {
	lock, err := l.locker.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.logger.Info("Sync run lock held elsewhere", zap.String("key", l.key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtain run lock %s: %w", l.key, err)
	}

	l.logger.Debug("Sync run lock obtained", zap.String("key", l.key), zap.Duration("ttl", l.ttl))

	keepCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go l.keepAlive(keepCtx, lock, done)

	return func(ctx context.Context) error {
		stop()
		<-done
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// expired before release; another replica may already own it
			l.logger.Warn("Sync run lock expired before release", zap.String("key", l.key))
			return nil
		}
		return err
	}, true, nil
}

// keepAlive extends lock until ctx is cancelled by release. A refresh that
// finds the lock gone ends the loop.
func (l *RedisRunLock) keepAlive(ctx context.Context, lock *redislock.Lock, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := lock.Refresh(ctx, l.ttl, nil)
		switch {
		case err == nil:
			l.logger.Debug("Sync run lock refreshed", zap.String("key", l.key))
		case ctx.Err() != nil:
			return
		case errors.Is(err, redislock.ErrNotObtained):
			l.logger.Error("Sync run lock lost while the run is active", zap.String("key", l.key))
			return
		default:
			l.logger.Warn("Sync run lock refresh failed", zap.String("key", l.key), zap.Error(err))
		}
	}
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options tune the distributed lock.
type Options struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultOptions waits up to roughly five seconds for a busy request.
func DefaultOptions(expiry time.Duration) Options {
	return Options{
		Expiry:     expiry,
		Tries:      100,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis is a redsync-backed lock shared by every service instance.
type Redis struct {
	redsync *redsync.Redsync
	opts    Options
	logger  *zap.Logger
}

// NewRedis builds a distributed lock over client.
func NewRedis(client redis.UniversalClient, opts Options, logger *zap.Logger) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if opts.Expiry <= 0 {
		return nil, errors.New("lock expiry must be greater than 0")
	}
	if opts.Tries < 1 {
		return nil, errors.New("lock tries must be at least 1")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		logger:  logger,
	}, nil
}

// Connect returns a Redis lock when addr is set and an in-process one
// otherwise. The returned func closes the Redis client.
func Connect(ctx context.Context, addr string, opts Options, logger *zap.Logger) (Manager, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(addr) == "" {
		logger.Info("using in-process request locks")
		return NewLocal(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	locks, err := NewRedis(rdb, opts, logger)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	logger.Info("using redis request locks", zap.String("addr", addr))
	return locks, func() { rdb.Close() }, nil
}

// WithLock acquires key in Redis, runs fn and releases the lock.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	mutex := r.redsync.NewMutex(
		key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		r.logger.Warn("failed to acquire lock", zap.String("lock_key", key), zap.Error(err))
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	defer func() {
		// ctx may already be cancelled; the lock must still be released
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			r.logger.Error("failed to release lock",
				zap.String("lock_key", key), zap.Bool("unlock_ok", ok), zap.Error(err))
		}
	}()

	return fn(ctx)
}

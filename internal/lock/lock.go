// Package lock prevents overlapping reconciliation runs for the same collection.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

// DEFAULT_KEY_PREFIX namespaces the lock keys in Redis
const DEFAULT_KEY_PREFIX = "nft-sync:lock:"

// releaseScript deletes the key only when it still holds our token
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// ReleaseFunc releases an acquired lock
type ReleaseFunc func(ctx context.Context) error

// Locker grants exclusive, non-blocking leases on keys
//
//go:generate mockgen -source=lock.go -destination=../mocks/lock.go -package=mocks -mock_names=Locker=MockLocker
type Locker interface {
	// TryAcquire takes the lock on key or returns domain.ErrLockNotAcquired when it is held
	TryAcquire(ctx context.Context, key string) (ReleaseFunc, error)
}

type redisLocker struct {
	client adapter.RedisClient
	ttl    time.Duration
	prefix string
}

// NewRedisLocker creates a locker shared by every process using the same Redis.
// The TTL bounds how long a crashed holder blocks the key.
func NewRedisLocker(client adapter.RedisClient, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl, prefix: DEFAULT_KEY_PREFIX}
}

func (l *redisLocker) TryAcquire(ctx context.Context, key string) (ReleaseFunc, error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, key)
	}

	return func(ctx context.Context) error {
		if err := l.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates a locker scoped to this process
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]struct{})}
}

func (l *localLocker) TryAcquire(_ context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, key)
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

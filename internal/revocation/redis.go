package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const marker = "true"

var _ Ledger = (*RedisLedger)(nil)

// RedisLedger implements Ledger on a Redis instance, relying on Redis key
// expiry for TTL semantics.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger creates a ledger connected to addr.
func NewRedisLedger(addr string) *RedisLedger {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisLedger{client: client}
}

// NewRedisLedgerFromURL creates a ledger from a redis:// URL.
func NewRedisLedgerFromURL(url string) (*RedisLedger, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisLedger{client: redis.NewClient(opts)}, nil
}

// NewRedisLedgerWithClient wraps an existing client (used in tests).
func NewRedisLedgerWithClient(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// Close closes the Redis connection.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}

// Ping checks that Redis is reachable.
func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLedger) Put(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, key, marker, ttl).Err()
}

func (l *RedisLedger) Get(ctx context.Context, key string) (bool, error) {
	err := l.client.Get(ctx, key).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLedger stores attempt counts in Redis. INCR gives the atomic
// read-modify-write the completion transition requires.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Count(ctx context.Context, key string) (int, error) {
	n, err := l.client.Get(ctx, l.key(key)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger count: %w", err)
	}
	return n, nil
}

func (l *RedisLedger) Increment(ctx context.Context, key string) (int, error) {
	n, err := l.client.Incr(ctx, l.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("ledger increment: %w", err)
	}
	return int(n), nil
}

func (l *RedisLedger) key(key string) string {
	return "ledger:" + key
}

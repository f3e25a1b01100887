package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// dedup:{scope}:{id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Ping verifies the connection at startup.
func Ping(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Deduper remembers which notifications were already fully processed. It is a
// fast path only; storage stays the source of truth.
type Deduper interface {
	Seen(ctx context.Context, scope, id string) (bool, error)
	Mark(ctx context.Context, scope, id string) error
}

type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(rdb *redis.Client) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, ttl: TTLDedup}
}

func (d *RedisDeduper) Seen(ctx context.Context, scope, id string) (bool, error) {
	n, err := d.rdb.Exists(ctx, fmt.Sprintf(KeyDedup, scope, id)).Result()
	return n > 0, err
}

func (d *RedisDeduper) Mark(ctx context.Context, scope, id string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(KeyDedup, scope, id), "1", d.ttl).Err()
}

// NopDeduper never reports a duplicate.
type NopDeduper struct{}

func (NopDeduper) Seen(context.Context, string, string) (bool, error) { return false, nil }
func (NopDeduper) Mark(context.Context, string, string) error         { return nil }

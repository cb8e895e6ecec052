// internal/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/javajoker/storefront-backend/internal/config"
)

// RedisSlot stores documents as plain redis string values.
type RedisSlot struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSlot(cfg config.RedisConfig) (*RedisSlot, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisSlotWithClient(rdb, cfg.KeyPrefix, time.Duration(cfg.TTL)*time.Hour), nil
}

// NewRedisSlotWithClient wraps an existing client. A zero ttl keeps keys forever.
func NewRedisSlotWithClient(rdb *goredis.Client, prefix string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisSlot) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisSlot) Save(ctx context.Context, key string, data []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Close() error {
	return r.rdb.Close()
}

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "room:code:"

// RedisReserver claims room codes in Redis so that several server processes
// sharing one Redis never hand out the same code.
type RedisReserver struct {
	rdb *redis.Client
}

// NewRedisReserver connects to redisURL and pings it.
func NewRedisReserver(ctx context.Context, redisURL string) (*RedisReserver, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisReserver{rdb: rdb}, nil
}

func NewRedisReserverFromClient(rdb *redis.Client) *RedisReserver {
	return &RedisReserver{rdb: rdb}
}

func (r *RedisReserver) Reserve(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, codeKeyPrefix+code, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve %s: %w", code, err)
	}
	return ok, nil
}

func (r *RedisReserver) Release(ctx context.Context, code string) error {
	if err := r.rdb.Del(ctx, codeKeyPrefix+code).Err(); err != nil {
		return fmt.Errorf("release %s: %w", code, err)
	}
	return nil
}

func (r *RedisReserver) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

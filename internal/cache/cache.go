// Package cache holds composed schedule views between writes.
//
// Keys are scoped by a generation counter. Invalidate bumps the counter, so
// every view cached under an older generation becomes unreachable and expires
// on its own TTL. A view computed before an invalidation is written under the
// generation it was read with and is never served afterwards.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKey = "vrs:views:gen"

type ViewCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, gen int64, key string, v interface{}) error
	Invalidate(ctx context.Context) error
}

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to url and verifies the connection with a ping.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (c *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read view generation: %w", err)
	}
	return gen, nil
}

func (c *Redis) Get(ctx context.Context, gen int64, key string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, viewKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read view %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode view %s: %w", key, err)
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, gen int64, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, viewKey(gen, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write view %s: %w", key, err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bump view generation: %w", err)
	}
	return nil
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func viewKey(gen int64, key string) string {
	return fmt.Sprintf("vrs:views:%d:%s", gen, key)
}

// Noop never hits. It is used when no redis url is configured.
type Noop struct{}

func (Noop) Generation(context.Context) (int64, error)                       { return 0, nil }
func (Noop) Get(context.Context, int64, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, int64, string, interface{}) error         { return nil }
func (Noop) Invalidate(context.Context) error                              { return nil }

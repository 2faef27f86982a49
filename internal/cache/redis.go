package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ec-simulator/internal/logger"
)

const keyNamespace = "ecsim"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
}

// Redis stores JSON-encoded values in a shared Redis instance so replicas
// reuse each other's results. Backend failures are logged and reported as
// misses.
type Redis[V any] struct {
	store  cmdable
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// DialRedis parses url, verifies connectivity and returns the raw client.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return raw, nil
}

// NewRedis namespaces keys under scope, e.g. "sim" becomes "ecsim:sim:<key>".
func NewRedis[V any](client *redis.Client, scope string, ttl time.Duration, log *logger.Logger) *Redis[V] {
	return newRedis[V](client, scope, ttl, log)
}

func newRedis[V any](store cmdable, scope string, ttl time.Duration, log *logger.Logger) *Redis[V] {
	if log == nil {
		log = logger.Nop()
	}
	return &Redis[V]{
		store:  store,
		prefix: strings.Join([]string{keyNamespace, scope}, ":") + ":",
		ttl:    ttl,
		log:    log,
	}
}

func (c *Redis[V]) Key(key string) string {
	return c.prefix + key
}

func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, err := c.store.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Error(c.log.WithField(ctx, "cache_key", key), "cache.get_failed", err)
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		c.log.Error(c.log.WithField(ctx, "cache_key", key), "cache.decode_failed", err)
		return zero, false
	}
	return v, true
}

func (c *Redis[V]) Set(ctx context.Context, key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Error(c.log.WithField(ctx, "cache_key", key), "cache.encode_failed", err)
		return
	}
	if err := c.store.Set(ctx, c.Key(key), raw, c.ttl).Err(); err != nil {
		c.log.Error(c.log.WithField(ctx, "cache_key", key), "cache.set_failed", err)
	}
}

// Ping reports whether the backend is reachable.
func (c *Redis[V]) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

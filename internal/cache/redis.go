// Package cache wraps the optional Redis deployment used for short-lived counters.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/config"
)

// Client is a thin Redis client with the operations the service needs.
type Client struct {
	rdb *redis.Client
}

// Connect opens a client and verifies the server answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("redis connection established")
	return &Client{rdb: rdb}, nil
}

// NewWithClient wraps an existing go-redis client.
// Primarily used for testing.
func NewWithClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close releases the connection pool. It is safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Ping checks that Redis is reachable. It satisfies the health check contract.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Incr increments key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return n, nil
}

// Expire sets the time to live of key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// TTL returns the remaining time to live of key. Negative values follow Redis semantics.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("ttl %s: %w", key, err)
	}
	return ttl, nil
}

// Key joins parts into a namespaced key. Colons inside parts are replaced.
func Key(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(strings.ReplaceAll(p, ":", "_"))
	}
	return b.String()
}

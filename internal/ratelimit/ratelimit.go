// Package ratelimit implements a fixed-window request limiter backed by
// redis and the HTTP middleware that enforces it.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is how long until the window (or block) expires.
	Reset time.Duration
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Backend is the subset of redis commands the limiter needs.
// *redis.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Config controls window size and blocking.
type Config struct {
	Limit  int
	Window time.Duration
	// Block is how long a caller stays blocked after exceeding Limit.
	Block  time.Duration
	Prefix string
}

// DefaultConfig allows 5 requests per minute and blocks for 10 minutes.
func DefaultConfig() Config {
	return Config{
		Limit:  5,
		Window: time.Minute,
		Block:  10 * time.Minute,
		Prefix: "salon:ratelimit",
	}
}

// Redis is a fixed-window Limiter.
type Redis struct {
	rdb Backend
	cfg Config
}

// NewRedis returns a limiter storing counters in rdb. Zero fields in cfg
// take their DefaultConfig values.
func NewRedis(rdb Backend, cfg Config) *Redis {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Block <= 0 {
		cfg.Block = def.Block
	}
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	return &Redis{rdb: rdb, cfg: cfg}
}

func (l *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	key = l.cfg.Prefix + ":" + key
	blockKey := key + ":blocked"
	d := Decision{Limit: l.cfg.Limit}

	blocked, err := l.rdb.Get(ctx, blockKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return d, fmt.Errorf("reading block flag: %w", err)
	}
	if blocked == "1" {
		ttl, _ := l.rdb.TTL(ctx, blockKey).Result()
		d.Reset = positive(ttl, l.cfg.Block)
		return d, nil
	}

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return d, fmt.Errorf("incrementing counter: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.cfg.Window).Err(); err != nil {
			return d, fmt.Errorf("setting window: %w", err)
		}
	}

	if count > int64(l.cfg.Limit) {
		if err := l.rdb.Set(ctx, blockKey, "1", l.cfg.Block).Err(); err != nil {
			return d, fmt.Errorf("setting block flag: %w", err)
		}
		d.Reset = l.cfg.Block
		return d, nil
	}

	ttl, _ := l.rdb.TTL(ctx, key).Result()
	d.Allowed = true
	d.Remaining = l.cfg.Limit - int(count)
	d.Reset = positive(ttl, l.cfg.Window)
	return d, nil
}

// positive returns d, or fallback when redis reports no expiry.
func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Package ratelimit limits attempts per key within a fixed window. It guards
// delegate token login against guessing.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter records an attempt for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Attempts int
	Window   time.Duration
}

func DefaultConfig() Config {
	return Config{Attempts: 10, Window: time.Minute}
}

// RedisLimiter keeps counters in redis so limits hold across restarts.
type RedisLimiter struct {
	rdb    *redis.Client
	cfg    Config
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg, prefix: "rate:login"}
}

// Connect builds a redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	count, err := rl.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rl.rdb.Expire(ctx, redisKey, rl.cfg.Window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(rl.cfg.Attempts), nil
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the single-process fallback when no redis is configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	windows map[string]*window
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	w, ok := ml.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(ml.cfg.Window)}
		ml.windows[key] = w
		ml.sweep(now)
	}
	w.count++
	return w.count <= ml.cfg.Attempts, nil
}

// sweep drops expired windows so idle keys do not accumulate.
func (ml *MemoryLimiter) sweep(now time.Time) {
	for k, w := range ml.windows {
		if !now.Before(w.resetAt) {
			delete(ml.windows, k)
		}
	}
}

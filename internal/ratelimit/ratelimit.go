package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter admits at most a fixed number of events per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count int
	start time.Time
}

// Memory is a per-process fixed window limiter.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
	now     func() time.Time
}

func NewMemory(rate int, window time.Duration) *Memory {
	return &Memory{buckets: make(map[string]*bucket), rate: rate, window: window, now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) >= m.window {
		m.buckets[key] = &bucket{count: 1, start: now}
		m.gc(now)
		return true, nil
	}
	if b.count < m.rate {
		b.count++
		return true, nil
	}
	return false, nil
}

// gc drops expired buckets once the map grows; callers hold mu.
func (m *Memory) gc(now time.Time) {
	if len(m.buckets) < 10000 {
		return
	}
	for k, b := range m.buckets {
		if now.Sub(b.start) >= m.window {
			delete(m.buckets, k)
		}
	}
}

// Redis is a fixed window limiter shared by every replica.
type Redis struct {
	c      *redis.Client
	prefix string
	rate   int
	window time.Duration
}

func NewRedis(c *redis.Client, prefix string, rate int, window time.Duration) *Redis {
	return &Redis{c: c, prefix: prefix, rate: rate, window: window}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().UnixNano() / int64(r.window)
	k := fmt.Sprintf("%s:%s:%d", r.prefix, key, slot)

	var incr *redis.IntCmd
	_, err := r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(r.rate), nil
}

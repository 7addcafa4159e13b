// Package ratelimit implements a fixed-window request counter backed by a
// shared Redis store, safe for many independent workers.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter keys get an extra grace period before expiring so badly
// synchronized clocks between workers and the Redis server do not drop a
// window early.
const expirationGrace = 10 * time.Second

// State is the outcome of one counter hit, attached to the request so the
// boundary layer can emit quota headers.
type State struct {
	Current int64
	Limit   int64
	Period  time.Duration
	Reset   time.Time
}

// Remaining is the number of requests left in the window; it goes negative
// once the limit is exceeded.
func (s *State) Remaining() int64 { return s.Limit - s.Current }

// OverLimit reports whether the caller has exceeded its quota.
func (s *State) OverLimit() bool { return s.Current > s.Limit }

// Limiter counts requests per client key per window. A nil Limiter (or one
// without a client) never limits.
type Limiter struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client) *Limiter {
	return &Limiter{client: client, prefix: "rate-limit:"}
}

// Hit atomically increments the caller's counter for the current window and
// returns the resulting state. The window boundary is embedded in the key so
// all requests inside one window share a counter, and the increment and the
// expiry set travel in a single pipelined round-trip so a key can never be
// incremented without an expiry. Returns (nil, nil) when limiting does not
// apply.
func (l *Limiter) Hit(ctx context.Context, key string, limit int64, period time.Duration) (*State, error) {
	if l == nil || l.client == nil || limit <= 0 || period <= 0 {
		return nil, nil
	}
	seconds := int64(period / time.Second)
	reset := (time.Now().Unix()/seconds)*seconds + seconds

	counterKey := fmt.Sprintf("%s%s:%d", l.prefix, key, reset)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.ExpireAt(ctx, counterKey, time.Unix(reset, 0).Add(expirationGrace))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit hit: %w", err)
	}

	current := incr.Val()
	if current > limit+1 {
		// one past the limit is all the caller needs to know
		current = limit + 1
	}
	return &State{
		Current: current,
		Limit:   limit,
		Period:  period,
		Reset:   time.Unix(reset, 0).UTC(),
	}, nil
}

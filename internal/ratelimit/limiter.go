// Package ratelimit enforces per-endpoint fixed-window request quotas.
//
// The window is fixed, not sliding: the first request for a key starts a
// counter whose TTL equals the window length, and the counter resets
// entirely when the TTL expires. Bursts spanning a window boundary can
// therefore momentarily pass up to twice the nominal rate; that is the
// documented contract, and the tests assert the fixed-window numbers.
package ratelimit

import (
	"context"
	"log"
	"math"
	"time"
)

// CounterStore is the ephemeral TTL key/value store backing the limiter.
// Increment must be an atomic get-and-increment: the first call for a key
// creates the counter with the given TTL, later calls within the TTL
// increment it without extending the expiry.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, expiresIn time.Duration, err error)
}

// Rule is one endpoint's quota.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of a quota check. RetryAfter is only set when
// the request is denied and is the remaining window in whole seconds.
type Decision struct {
	Allowed    bool
	RetryAfter int
}

// Limiter tracks request counts per (endpoint, identifier).
type Limiter struct {
	store CounterStore
	rules map[string]Rule
}

func NewLimiter(store CounterStore, rules map[string]Rule) *Limiter {
	return &Limiter{store: store, rules: rules}
}

// Check consumes one slot for the given endpoint and identifier. It never
// returns an error: endpoints without a rule are unlimited, and a store
// failure fails open so the quota layer cannot take request serving down.
func (l *Limiter) Check(ctx context.Context, endpoint, identifier string) Decision {
	rule, ok := l.rules[endpoint]
	if !ok || rule.Limit <= 0 {
		return Decision{Allowed: true}
	}

	key := endpoint + ":" + identifier
	count, expiresIn, err := l.store.Increment(ctx, key, rule.Window)
	if err != nil {
		log.Printf("ratelimit: counter store unavailable, allowing request: %v", err)
		return Decision{Allowed: true}
	}

	if count <= int64(rule.Limit) {
		return Decision{Allowed: true}
	}

	retryAfter := int(math.Ceil(expiresIn.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}
}

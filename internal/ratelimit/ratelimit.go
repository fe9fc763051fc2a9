// Package ratelimit provides a keyed token-bucket rate limiter. The API
// layer keys it by client IP (non-blocking Allow), the completion client
// keys it by credential fingerprint (blocking Wait).
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter hands out an independent token bucket per key.
type KeyedLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a keyed limiter allowing rps requests per second with the
// given burst per key.
func New(rps float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// PerMinute creates a keyed limiter expressed in requests per minute,
// which is how inbound limits are configured.
func PerMinute(rpm float64, burst int) *KeyedLimiter {
	return New(rpm/60, burst)
}

// Allow reports whether a request for key may proceed right now.
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.limiter(key).Allow()
}

// Wait blocks until a request for key may proceed or ctx is canceled.
func (kl *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return kl.limiter(key).Wait(ctx)
}

func (kl *KeyedLimiter) limiter(key string) *rate.Limiter {
	kl.mu.RLock()
	lim, ok := kl.limiters[key]
	kl.mu.RUnlock()
	if ok {
		return lim
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if lim, ok = kl.limiters[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(kl.limit, kl.burst)
	kl.limiters[key] = lim
	return lim
}

// Len returns the number of keys with an allocated bucket.
func (kl *KeyedLimiter) Len() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.limiters)
}

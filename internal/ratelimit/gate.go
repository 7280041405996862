// Package ratelimit provides the process-wide gate that spaces outbound
// NCBI requests across all workers.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// NCBI allows 10 requests per second with an API key and 5 without.
const (
	KeyedInterval   = 100 * time.Millisecond
	UnkeyedInterval = 200 * time.Millisecond
)

// Gate enforces a minimum spacing between any two outbound requests,
// regardless of which worker issues them. It serializes request timing
// only; request execution proceeds concurrently.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate builds a gate with the given minimum inter-request interval.
// Burst 1 makes the limiter release exactly one request per interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// ForCredential picks the interval from API-key presence, fixed for the
// process lifetime.
func ForCredential(apiKey string) *Gate {
	if apiKey != "" {
		return NewGate(KeyedInterval)
	}
	return NewGate(UnkeyedInterval)
}

// Wait blocks until the caller may issue the next request.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Interval reports the configured minimum spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Package throttle provides cooldown gating for expensive refresh operations.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the minimum interval between gated operations when no
// explicit cooldown is configured.
const DefaultCooldown = 3 * time.Second

// Gate limits how often an operation may run, using a token bucket with a
// capacity of one token refilled once per cooldown interval.
//
// This implementation wraps golang.org/x/time/rate to provide:
//   - At most one operation per cooldown window
//   - A bypass path for operations that must run regardless of the window
//   - Context-aware waiting for callers that prefer to block
//
// Use cases:
//   - Coalescing bursts of refresh requests into a single backend fetch
//   - Protecting a shared backend from polling storms
//
// Thread safety:
// All methods are safe for concurrent use.
type Gate struct {
	limiter  *rate.Limiter
	cooldown time.Duration
}

// NewGate creates a Gate with the given cooldown interval.
//
// Special cases:
//   - cooldown <= 0: the gate always allows (no throttling)
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		return &Gate{
			limiter:  rate.NewLimiter(rate.Inf, 1),
			cooldown: 0,
		}
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(cooldown), 1),
		cooldown: cooldown,
	}
}

// Allow reports whether an operation may run now, consuming the token if so.
//
// This is the fast path: it returns immediately without waiting. Callers that
// receive false should skip the operation and rely on a later attempt.
func (g *Gate) Allow() bool {
	return g.limiter.Allow()
}

// AllowForce consumes a token if one is available but always permits the
// operation. Forced runs still drain the bucket so that an immediately
// following non-forced attempt observes the cooldown.
func (g *Gate) AllowForce() {
	// Result intentionally ignored: the point is draining the bucket.
	g.limiter.Allow()
}

// Wait blocks until the gate permits an operation or the context is
// cancelled.
//
// Returns nil if a token was acquired, or the context error if the context
// was cancelled first.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Cooldown returns the configured cooldown interval. Zero means the gate is
// unlimited.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}

// Package ratelimit throttles gateway callers per key.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Budget is the number of requests allowed per window.
type Budget struct {
	Requests int
	Window   time.Duration
}

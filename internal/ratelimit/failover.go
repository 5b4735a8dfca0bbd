package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const retryPrimaryAfter = time.Minute

// Failover consults primary until it fails, then serves from fallback and
// retries primary once a minute.
type Failover struct {
	primary   Limiter
	fallback  Limiter
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailover(primary, fallback Limiter, logger *zerolog.Logger) *Failover {
	return &Failover{primary: primary, fallback: fallback, logger: logger}
}

func (f *Failover) Allow(ctx context.Context, key string) (bool, error) {
	if !f.isDown.Load() || f.retryDue() {
		allowed, err := f.primary.Allow(ctx, key)
		if err == nil {
			if f.isDown.CompareAndSwap(true, false) {
				f.logger.Info().Msg("primary rate limiter recovered")
			}
			return allowed, nil
		}
		if !f.isDown.Swap(true) {
			f.logger.Error().Err(err).Msg("primary rate limiter failed, falling back to memory")
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.Allow(ctx, key)
}

func (f *Failover) retryDue() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > retryPrimaryAfter
}

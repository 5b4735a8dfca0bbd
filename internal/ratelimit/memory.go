package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// MemoryStore keeps one token bucket per key in process memory.
// A bucket left idle for a whole window has refilled completely, so it is
// dropped on the next sweep and recreated on demand.
type MemoryStore struct {
	limiters  sync.Map // map[string]*bucket
	budget    Budget
	now       func() time.Time
	lastSweep atomic.Int64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func NewMemoryStore(budget Budget) *MemoryStore {
	s := &MemoryStore{budget: budget, now: time.Now}
	s.lastSweep.Store(s.now().UnixNano())
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	now := s.now()
	s.sweep(now)

	b := s.getBucket(key)
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1), nil
}

// Len reports how many keys currently hold a bucket.
func (s *MemoryStore) Len() int {
	n := 0
	s.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *MemoryStore) idleAfter() time.Duration {
	if s.budget.Window <= 0 {
		return time.Minute
	}
	return s.budget.Window
}

// sweep runs at most once per window; one caller wins the CAS and scans.
func (s *MemoryStore) sweep(now time.Time) {
	idle := s.idleAfter()
	last := s.lastSweep.Load()
	if now.UnixNano()-last < int64(idle) {
		return
	}
	if !s.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-idle).UnixNano()
	s.limiters.Range(func(key, v any) bool {
		if b := v.(*bucket); b.lastSeen.Load() <= cutoff {
			s.limiters.CompareAndDelete(key, b)
		}
		return true
	})
}

func (s *MemoryStore) getBucket(key string) *bucket {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*bucket)
	}

	burst := s.budget.Requests
	if burst <= 0 {
		burst = 1
	}
	every := rate.Every(s.budget.Window / time.Duration(burst))
	b := &bucket{limiter: rate.NewLimiter(every, burst)}
	b.lastSeen.Store(s.now().UnixNano())

	actual, loaded := s.limiters.LoadOrStore(key, b)
	if loaded {
		return actual.(*bucket)
	}
	return b
}

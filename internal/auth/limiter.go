package auth

import (
	"sync"
	"time"
)

// Limiter bounds request rates per principal. The in-memory
// implementation is a true limit only within a single instance;
// cross-replica enforcement needs an external bounded counter behind
// this interface.
type Limiter interface {
	Allow(keyHash string) bool
}

type memoryLimiter struct {
	perMinute int
	now       func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	window time.Time
	count  int
}

// NewMemoryLimiter creates a per-key fixed-window limiter. A nil clock
// uses time.Now.
func NewMemoryLimiter(perMinute int, clock func() time.Time) Limiter {
	if clock == nil {
		clock = time.Now
	}
	return &memoryLimiter{
		perMinute: perMinute,
		now:       clock,
		buckets:   make(map[string]*bucket),
	}
}

func (l *memoryLimiter) Allow(keyHash string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.now().Truncate(time.Minute)

	b, ok := l.buckets[keyHash]
	if !ok || !b.window.Equal(window) {
		b = &bucket{window: window}
		l.buckets[keyHash] = b
	}

	if b.count >= l.perMinute {
		return false
	}

	b.count++
	return true
}

package throttle

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryKeys bounds the number of clients tracked in memory.
const DefaultMemoryKeys = 10000

type window struct {
	start time.Time
	count int
}

type MemoryLimiter struct {
	mu      sync.Mutex
	windows *lru.Cache[string, *window]
	limit   int
	window  time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryLimiter)

func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

func NewMemoryLimiter(limit int, win time.Duration, size int, opts ...MemoryOption) (*MemoryLimiter, error) {
	if size <= 0 {
		size = DefaultMemoryKeys
	}
	cache, err := lru.New[string, *window](size)
	if err != nil {
		return nil, err
	}
	l := &MemoryLimiter{windows: cache, limit: limit, window: win, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows.Get(key)
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &window{start: now}
		l.windows.Add(key, w)
	}
	w.count++

	if w.count > l.limit {
		return false, w.start.Add(l.window).Sub(now), nil
	}
	return true, 0, nil
}

// Package throttle counts login and registration attempts per client in
// fixed windows. Counters live in Redis when configured, otherwise in a
// bounded in-process LRU.
package throttle

import (
	"context"
	"time"
)

// Limiter decides whether one more attempt for key fits the current window.
// RetryAfter is the time left in the window when the attempt is refused.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// Unlimited allows every attempt. Used when the limit is zero.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}

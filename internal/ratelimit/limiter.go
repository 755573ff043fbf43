// Package ratelimit paces how fast students may walk up to the help center.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Door limits seat attempts across all students to a number of arrivals per
// second. A nil Door, or one with rate 0, admits everyone immediately.
type Door struct {
	limiter *rate.Limiter
}

// NewDoor creates a Door admitting perSecond arrivals per second, with a
// burst of the same size (at least one).
func NewDoor(perSecond int) *Door {
	return &Door{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst(perSecond)),
	}
}

// Enter blocks until the caller may attempt a seat or ctx is done.
func (d *Door) Enter(ctx context.Context) error {
	if d == nil || d.limiter.Limit() == 0 {
		return nil
	}
	return d.limiter.Wait(ctx)
}

// Rate returns the arrivals-per-second limit.
func (d *Door) Rate() int {
	if d == nil {
		return 0
	}
	return int(d.limiter.Limit())
}

func burst(perSecond int) int {
	if perSecond < 1 {
		return 1
	}
	return perSecond
}

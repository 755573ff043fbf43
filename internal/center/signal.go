package center

import (
	"context"

	"csmc/internal/invariant"
)

// Ticket is what a seated student hands to the tutor that answers it.
type Ticket struct {
	StudentID int
	Seq       int64
	TutorID   int

	done *Signal
}

// Signal is a counting rendezvous: each Post unblocks exactly one Wait, or
// is buffered until one arrives. The buffer is bounded by the protocol, so
// overflowing it means the protocol was broken.
type Signal struct {
	name string
	ch   chan Ticket
}

// NewSignal creates a signal able to buffer capacity pending posts.
func NewSignal(name string, capacity int) *Signal {
	invariant.Checkf(capacity > 0, "%s signal capacity must be positive, got %d", name, capacity)
	return &Signal{name: name, ch: make(chan Ticket, capacity)}
}

// Post never blocks.
func (s *Signal) Post(t Ticket) {
	select {
	case s.ch <- t:
	default:
		invariant.Violatef("%s signal exceeded capacity %d", s.name, cap(s.ch))
	}
}

// Wait blocks until a post is available or ctx is done.
func (s *Signal) Wait(ctx context.Context) (Ticket, error) {
	select {
	case t := <-s.ch:
		return t, nil
	case <-ctx.Done():
		return Ticket{}, ctx.Err()
	}
}

// Pending returns the number of buffered posts.
func (s *Signal) Pending() int {
	return len(s.ch)
}

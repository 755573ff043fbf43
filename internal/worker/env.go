// Package worker implements the student and tutor state machines that drive
// the help center.
package worker

import (
	"math/rand/v2"
	"time"

	"csmc/internal/center"
	"csmc/internal/core"
	"csmc/internal/ratelimit"
)

// Env is everything a worker shares with the rest of the run. Workers never
// touch each other directly; all coordination goes through Protocol.
type Env struct {
	Protocol *center.Protocol
	Clock    core.Clock
	Reporter core.Reporter
	Door     *ratelimit.Door

	Unit          time.Duration
	MaxWork       int
	MaxHelp       int
	RequiredHelps int
	Students      int
	Seats         int
	Seed          uint64
}

// StudentSeed derives the private generator stream for student id.
func (e *Env) StudentSeed(id int) uint64 {
	return uint64(id) * uint64(e.MaxWork) * uint64(e.Students) * uint64(e.RequiredHelps) * uint64(e.Seats)
}

// TutorSeed derives the private generator stream for tutor id.
func (e *Env) TutorSeed(id int) uint64 {
	return 5 * uint64(id) * uint64(e.MaxHelp) * uint64(e.Students) * uint64(e.RequiredHelps) * uint64(e.Seats)
}

func (e *Env) newRand(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(e.Seed, stream))
}

func (e *Env) report(ev core.Event) {
	if e.Reporter == nil {
		return
	}
	if ev.Timestamp.IsZero() && e.Clock != nil {
		ev.Timestamp = e.Clock.Now()
	}
	e.Reporter.Report(ev)
}

package worker

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"csmc/internal/center"
	"csmc/internal/core"
)

// TutorState is a step of the tutor state machine.
type TutorState int32

const (
	TutorIdle TutorState = iota
	Serving
	Stopped
)

func (s TutorState) String() string {
	switch s {
	case TutorIdle:
		return "Idle"
	case Serving:
		return "Serving"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Tutor waits for seated students and helps them one at a time. It never
// stops on its own.
type Tutor struct {
	ID int

	env      *Env
	rng      *rand.Rand
	sessions atomic.Int64
	state    atomic.Int32
}

// NewTutor creates tutor id with its own generator.
func NewTutor(id int, env *Env) *Tutor {
	return &Tutor{
		ID:  id,
		env: env,
		rng: env.newRand(env.TutorSeed(id)),
	}
}

// Sessions returns how many help sessions this tutor has completed.
func (t *Tutor) Sessions() int { return int(t.sessions.Load()) }

// State returns the current state for observers such as tests. Safe to
// call from any goroutine.
func (t *Tutor) State() TutorState { return TutorState(t.state.Load()) }

// Run serves students until stop is closed or ctx is done. A stop request
// is honored only between sessions: a tutor in Serving finishes the current
// student first. Cancelling ctx aborts immediately and returns ctx.Err().
func (t *Tutor) Run(ctx context.Context, stop <-chan struct{}) error {
	idle, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-idle.Done():
		}
	}()

	defer t.state.Store(int32(Stopped))
	for {
		t.state.Store(int32(TutorIdle))
		ticket, err := t.env.Protocol.WaitForStudentReady(idle)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithField("tutor", t.ID).Debug("tutor stopped")
			return nil
		}
		if err := t.serve(ctx, ticket); err != nil {
			return err
		}
	}
}

func (t *Tutor) serve(ctx context.Context, ticket center.Ticket) error {
	t.state.Store(int32(Serving))
	p := t.env.Protocol

	occupied := p.ReleaseSeat()
	units := t.rng.IntN(t.env.MaxHelp) + 1
	d := t.env.Unit * time.Duration(units)
	t.report(core.Event{Kind: core.TutorHelping, Units: units, Duration: d, Occupied: occupied, PeerID: ticket.StudentID})

	if err := t.env.Clock.Sleep(ctx, d); err != nil {
		return err
	}

	ticket.TutorID = t.ID
	p.SignalHelpDone(ticket)
	n := t.sessions.Add(1)
	t.report(core.Event{Kind: core.HelpFinished, PeerID: ticket.StudentID, Helps: int(n)})
	return nil
}

func (t *Tutor) report(ev core.Event) {
	ev.Role = core.RoleTutor
	ev.ActorID = t.ID
	t.env.report(ev)
}

package worker

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"csmc/internal/core"
	"csmc/internal/invariant"
)

// StudentState is a step of the student state machine.
type StudentState int32

const (
	StudentIdle StudentState = iota // not started
	Working
	SeekingSeat
	Seated
	Rejected
	BeingHelped
	Done
)

var studentStateNames = [...]string{"Idle", "Working", "SeekingSeat", "Seated", "Rejected", "BeingHelped", "Done"}

func (s StudentState) String() string {
	if int(s) < len(studentStateNames) {
		return studentStateNames[s]
	}
	return "Unknown"
}

// Student works, seeks a seat, and waits for help until it has been helped
// RequiredHelps times. A Student must run on exactly one goroutine.
type Student struct {
	ID int

	env   *Env
	rng   *rand.Rand
	helps int
	state atomic.Int32
}

// NewStudent creates student id with its own generator.
func NewStudent(id int, env *Env) *Student {
	return &Student{
		ID:  id,
		env: env,
		rng: env.newRand(env.StudentSeed(id)),
	}
}

// Helps returns the help sessions received. Only meaningful once Run returns.
func (s *Student) Helps() int { return s.helps }

// State returns the current state for observers such as tests. Safe to
// call from any goroutine.
func (s *Student) State() StudentState { return StudentState(s.state.Load()) }

// Run drives the student to Done. It returns ctx.Err() if the run is
// aborted first.
func (s *Student) Run(ctx context.Context) error {
	p := s.env.Protocol
	for s.helps < s.env.RequiredHelps {
		if err := s.work(ctx); err != nil {
			return err
		}

		s.setState(SeekingSeat)
		if err := s.env.Door.Enter(ctx); err != nil {
			return err
		}
		occupied, ok := p.TryTakeSeat()
		if !ok {
			s.setState(Rejected)
			s.report(core.Event{Kind: core.NoSeat, Occupied: occupied})
			continue
		}

		s.setState(Seated)
		s.report(core.Event{Kind: core.SeatTaken, Occupied: occupied})
		ticket := p.NewTicket(s.ID)
		p.SignalStudentReady(ticket)

		s.setState(BeingHelped)
		served, err := p.WaitForHelpDone(ctx, ticket)
		if err != nil {
			return err
		}
		s.helps++
		invariant.Checkf(s.helps <= s.env.RequiredHelps,
			"student %d helped %d times, needs %d", s.ID, s.helps, s.env.RequiredHelps)
		s.report(core.Event{Kind: core.HelpReceived, Helps: s.helps, PeerID: served.TutorID})
	}

	s.setState(Done)
	finished := p.Finish()
	s.report(core.Event{Kind: core.StudentDone, Helps: s.helps})
	log.WithFields(log.Fields{"student": s.ID, "finished": finished}).Debug("student finished")
	return nil
}

func (s *Student) work(ctx context.Context) error {
	s.setState(Working)
	units := s.rng.IntN(s.env.MaxWork) + 1
	d := s.env.Unit * time.Duration(units)
	s.report(core.Event{Kind: core.StudentWorking, Units: units, Duration: d})
	return s.env.Clock.Sleep(ctx, d)
}

func (s *Student) setState(st StudentState) {
	prev := StudentState(s.state.Swap(int32(st)))
	log.WithFields(log.Fields{"student": s.ID, "from": prev, "to": st}).Trace("student transition")
}

func (s *Student) report(ev core.Event) {
	ev.Role = core.RoleStudent
	ev.ActorID = s.ID
	s.env.report(ev)
}

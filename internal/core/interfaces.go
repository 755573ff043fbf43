// Package core defines the event model and shared interfaces for the help center.
package core

import "time"

// Role identifies which kind of worker emitted an event.
type Role string

const (
	RoleStudent     Role = "student"
	RoleTutor       Role = "tutor"
	RoleCoordinator Role = "coordinator"
)

// EventKind names a transition in the help-center protocol.
type EventKind string

const (
	StudentWorking EventKind = "student_working" // Units = work duration
	SeatTaken      EventKind = "seat_taken"      // Occupied = occupancy after taking
	NoSeat         EventKind = "no_seat"
	HelpReceived   EventKind = "help_received" // Helps = helps received so far
	StudentDone    EventKind = "student_done"
	TutorHelping   EventKind = "tutor_helping" // Units = help duration, Occupied = after release
	HelpFinished   EventKind = "help_finished"
	AllHelped      EventKind = "all_helped"
	WorkerPanic    EventKind = "worker_panic"
)

// Event is a single structured record emitted at a protocol transition.
type Event struct {
	Kind      EventKind
	Role      Role
	ActorID   int
	PeerID    int // the other party: served student on tutor events, releasing tutor on student events
	Timestamp time.Time
	Units     int
	Duration  time.Duration
	Occupied  int
	Helps     int
	Error     string
}

// Reporter is the sink workers send events to. Implementations must be safe
// for concurrent use.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// NullReporter discards all events.
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Event) {}

// MultiReporter fans each event out to every reporter, in order.
func MultiReporter(reporters ...Reporter) Reporter {
	rs := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return multiReporter(rs)
}

type multiReporter []Reporter

func (m multiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

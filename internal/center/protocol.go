package center

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Pairing selects how help-done signals are matched to students.
type Pairing string

const (
	// PairingAnonymous shares one help-done signal: any finished tutor
	// releases any waiting student.
	PairingAnonymous Pairing = "anonymous"
	// PairingTicket gives each visit its own help-done signal, so the tutor
	// that dequeued a ticket releases exactly that student.
	PairingTicket Pairing = "ticket"
)

// ParsePairing validates a pairing name. The empty string means anonymous.
func ParsePairing(s string) (Pairing, error) {
	switch Pairing(s) {
	case "", PairingAnonymous:
		return PairingAnonymous, nil
	case PairingTicket:
		return PairingTicket, nil
	default:
		return "", fmt.Errorf("unknown pairing %q (want %q or %q)", s, PairingAnonymous, PairingTicket)
	}
}

// Protocol is the seat protocol: the lock-guarded seat operations of a
// Center plus the two rendezvous signals between students and tutors.
type Protocol struct {
	center   *Center
	pairing  Pairing
	ready    *Signal
	helpDone *Signal
	seq      atomic.Int64
}

// NewProtocol wires the signals for c.
//
// Pending ready posts never exceed occupied seats. Pending help-done posts
// never exceed the students blocked waiting for help.
func NewProtocol(c *Center, pairing Pairing) *Protocol {
	snap := c.Snapshot()
	p := &Protocol{
		center:  c,
		pairing: pairing,
		ready:   NewSignal("student-ready", snap.Seats),
	}
	if pairing != PairingTicket {
		p.pairing = PairingAnonymous
		p.helpDone = NewSignal("help-done", snap.Students)
	}
	return p
}

func (p *Protocol) Center() *Center { return p.center }

func (p *Protocol) Pairing() Pairing { return p.pairing }

func (p *Protocol) TryTakeSeat() (int, bool) { return p.center.TryTakeSeat() }

func (p *Protocol) ReleaseSeat() int { return p.center.ReleaseSeat() }

func (p *Protocol) Finish() int { return p.center.Finish() }

// NewTicket issues the ticket a student presents after taking a seat.
func (p *Protocol) NewTicket(studentID int) Ticket {
	t := Ticket{StudentID: studentID, Seq: p.seq.Add(1)}
	if p.pairing == PairingTicket {
		t.done = NewSignal(fmt.Sprintf("help-done[%d]", studentID), 1)
	} else {
		t.done = p.helpDone
	}
	return t
}

// SignalStudentReady wakes one idle tutor, or buffers the wake-up.
func (p *Protocol) SignalStudentReady(t Ticket) {
	p.ready.Post(t)
}

// WaitForStudentReady blocks until a seated student has signalled.
func (p *Protocol) WaitForStudentReady(ctx context.Context) (Ticket, error) {
	return p.ready.Wait(ctx)
}

// SignalHelpDone releases the student the ticket pairs with. In anonymous
// pairing that is any student waiting for help.
func (p *Protocol) SignalHelpDone(t Ticket) {
	t.done.Post(t)
}

// WaitForHelpDone blocks the holder of t until a tutor finishes with it.
// The returned ticket is the one the releasing tutor served.
func (p *Protocol) WaitForHelpDone(ctx context.Context, t Ticket) (Ticket, error) {
	return t.done.Wait(ctx)
}

// PendingReady returns buffered ready signals not yet answered.
func (p *Protocol) PendingReady() int { return p.ready.Pending() }

// Close tears down the protocol and its center.
func (p *Protocol) Close() {
	p.center.Close()
}

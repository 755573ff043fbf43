// Package console prints help-center events as the one-line messages a
// person watching the run reads.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"csmc/internal/core"
)

// CompletionBanner is printed once every student has finished.
const CompletionBanner = "All students helped. Exiting."

// Printer is a core.Reporter writing one line per event. Events without a
// console message are skipped. Safe for concurrent use.
type Printer struct {
	mu   sync.Mutex
	w    io.Writer
	unit time.Duration
}

// NewPrinter writes to w. unit is the simulated time unit; when it is one
// second durations print as "N seconds".
func NewPrinter(w io.Writer, unit time.Duration) *Printer {
	return &Printer{w: w, unit: unit}
}

func (p *Printer) Report(e core.Event) {
	line, ok := p.Format(e)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// Format renders e, reporting false for events that have no console line.
func (p *Printer) Format(e core.Event) (string, bool) {
	switch e.Kind {
	case core.StudentWorking:
		return fmt.Sprintf("Student %d has been working for %s", e.ActorID, p.span(e.Units, e.Duration)), true
	case core.SeatTaken:
		return fmt.Sprintf("Student %d takes a seat. Waiting students = %d", e.ActorID, e.Occupied), true
	case core.NoSeat:
		return fmt.Sprintf("Student %d found no empty chair. Will try later", e.ActorID), true
	case core.StudentDone:
		return fmt.Sprintf("Student %d needs no more help. They are finished at CSMC.", e.ActorID), true
	case core.TutorHelping:
		return fmt.Sprintf("Tutor %d has been helping a student for %s. Waiting students = %d",
			e.ActorID, p.span(e.Units, e.Duration), e.Occupied), true
	case core.AllHelped:
		return CompletionBanner, true
	case core.WorkerPanic:
		return fmt.Sprintf("%s %d failed: %s", e.Role, e.ActorID, e.Error), true
	default:
		return "", false
	}
}

func (p *Printer) span(units int, d time.Duration) string {
	if p.unit == time.Second {
		return fmt.Sprintf("%d seconds", units)
	}
	return d.String()
}

package core

import "testing"

func TestMultiReporter_FansOut(t *testing.T) {
	a := &RecordingReporter{}
	b := &RecordingReporter{}
	rep := MultiReporter(a, nil, b)

	rep.Report(Event{Kind: SeatTaken, ActorID: 1})
	rep.Report(Event{Kind: NoSeat, ActorID: 2})

	if len(a.Events()) != 2 || len(b.Events()) != 2 {
		t.Errorf("expected both reporters to get 2 events, got %d and %d", len(a.Events()), len(b.Events()))
	}
	if a.Count(SeatTaken) != 1 {
		t.Errorf("expected 1 seat_taken event, got %d", a.Count(SeatTaken))
	}
}

func TestReporterFunc(t *testing.T) {
	var got EventKind
	ReporterFunc(func(e Event) { got = e.Kind }).Report(Event{Kind: StudentDone})
	if got != StudentDone {
		t.Errorf("expected %q, got %q", StudentDone, got)
	}
}

func TestNullReporter(t *testing.T) {
	// NullReporter should not panic when Report is called
	NullReporter.Report(Event{Kind: AllHelped})
}

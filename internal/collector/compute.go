package collector

import (
	"time"

	"csmc/internal/core"
)

// Summary is the aggregate view of one run.
type Summary struct {
	Duration     time.Duration
	Events       int
	SeatTakes    int
	Rejections   int
	Sessions     int
	Finished     int
	MaxOccupied  int
	WorkUnits    int
	HelpUnits    int
	Panics       int
	AllHelped    bool
	Students     map[int]*StudentSummary
	Tutors       map[int]*TutorSummary
	HelpDuration DurationStats
}

// StudentSummary aggregates one student's events.
type StudentSummary struct {
	Visits     int
	Rejections int
	Helps      int
	WorkUnits  int
	Done       bool
}

// TutorSummary aggregates one tutor's events.
type TutorSummary struct {
	Sessions  int
	HelpUnits int
}

// DurationStats describes a set of simulated durations.
type DurationStats struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// ComputeSummary computes a Summary from events. Pure function, no side effects.
func ComputeSummary(events []core.Event, runDuration time.Duration) *Summary {
	s := &Summary{
		Duration: runDuration,
		Events:   len(events),
		Students: make(map[int]*StudentSummary),
		Tutors:   make(map[int]*TutorSummary),
	}

	var helpDurations []time.Duration
	for _, e := range events {
		switch e.Kind {
		case core.StudentWorking:
			s.WorkUnits += e.Units
			s.student(e.ActorID).WorkUnits += e.Units
		case core.SeatTaken:
			s.SeatTakes++
			s.student(e.ActorID).Visits++
			if e.Occupied > s.MaxOccupied {
				s.MaxOccupied = e.Occupied
			}
		case core.NoSeat:
			s.Rejections++
			s.student(e.ActorID).Rejections++
		case core.HelpReceived:
			s.student(e.ActorID).Helps++
		case core.StudentDone:
			s.Finished++
			s.student(e.ActorID).Done = true
		case core.TutorHelping:
			s.HelpUnits += e.Units
			s.tutor(e.ActorID).HelpUnits += e.Units
			helpDurations = append(helpDurations, e.Duration)
		case core.HelpFinished:
			s.Sessions++
			s.tutor(e.ActorID).Sessions++
		case core.AllHelped:
			s.AllHelped = true
		case core.WorkerPanic:
			s.Panics++
		}
	}

	s.HelpDuration = ComputeDurationStats(helpDurations)
	return s
}

// ComputeDurationStats returns count, min, max and mean of durations.
func ComputeDurationStats(durations []time.Duration) DurationStats {
	if len(durations) == 0 {
		return DurationStats{}
	}
	st := DurationStats{Count: len(durations), Min: durations[0], Max: durations[0]}
	var total time.Duration
	for _, d := range durations {
		total += d
		if d < st.Min {
			st.Min = d
		}
		if d > st.Max {
			st.Max = d
		}
	}
	st.Avg = total / time.Duration(len(durations))
	return st
}

func (s *Summary) student(id int) *StudentSummary {
	if _, ok := s.Students[id]; !ok {
		s.Students[id] = &StudentSummary{}
	}
	return s.Students[id]
}

func (s *Summary) tutor(id int) *TutorSummary {
	if _, ok := s.Tutors[id]; !ok {
		s.Tutors[id] = &TutorSummary{}
	}
	return s.Tutors[id]
}

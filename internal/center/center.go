// Package center holds the shared help-center state and the seat protocol
// student and tutor workers coordinate through.
package center

import (
	"sync"

	"csmc/internal/invariant"
)

// Center is the shared mutable state of the help center. Every field is
// guarded by mu and only reachable through methods.
type Center struct {
	mu       sync.Mutex
	seats    int
	students int

	occupied    int
	finished    int
	seatTakes   int
	rejections  int
	releases    int
	maxOccupied int
	closed      bool
}

// Snapshot is a consistent copy of the center counters.
type Snapshot struct {
	Seats       int `json:"seats"`
	Students    int `json:"students"`
	Occupied    int `json:"occupied"`
	Finished    int `json:"finished"`
	SeatTakes   int `json:"seatTakes"`
	Rejections  int `json:"rejections"`
	Sessions    int `json:"sessions"`
	MaxOccupied int `json:"maxOccupied"`
}

// New creates a center with the given seat capacity for a run of students.
func New(seats, students int) *Center {
	invariant.Checkf(seats > 0, "seat capacity must be positive, got %d", seats)
	invariant.Checkf(students > 0, "student count must be positive, got %d", students)
	return &Center{seats: seats, students: students}
}

// TryTakeSeat admits the caller if a seat is free. It returns the occupancy
// after the attempt and whether a seat was taken.
func (c *Center) TryTakeSeat() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()

	if c.occupied >= c.seats {
		c.rejections++
		return c.occupied, false
	}
	c.occupied++
	c.seatTakes++
	if c.occupied > c.maxOccupied {
		c.maxOccupied = c.occupied
	}
	c.checkLocked()
	return c.occupied, true
}

// ReleaseSeat frees one seat and returns the occupancy after release.
func (c *Center) ReleaseSeat() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()

	invariant.Check(c.occupied > 0, "seat released while center is empty")
	c.occupied--
	c.releases++
	c.checkLocked()
	return c.occupied
}

// Finish records one student leaving for good and returns the finished count.
func (c *Center) Finish() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()

	c.finished++
	c.checkLocked()
	return c.finished
}

// Snapshot returns a copy of the counters taken under the lock.
func (c *Center) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Seats:       c.seats,
		Students:    c.students,
		Occupied:    c.occupied,
		Finished:    c.finished,
		SeatTakes:   c.seatTakes,
		Rejections:  c.rejections,
		Sessions:    c.releases,
		MaxOccupied: c.maxOccupied,
	}
}

// Close marks the center torn down. Any later mutation is a violation.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether Close has been called.
func (c *Center) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Center) checkOpen() {
	invariant.Check(!c.closed, "center used after close")
}

// checkLocked asserts the range invariants. Caller holds mu.
func (c *Center) checkLocked() {
	invariant.Checkf(c.occupied >= 0 && c.occupied <= c.seats,
		"occupied %d outside [0, %d]", c.occupied, c.seats)
	invariant.Checkf(c.finished >= 0 && c.finished <= c.students,
		"finished %d outside [0, %d]", c.finished, c.students)
}

// Package collector aggregates help-center events and summarizes a run.
package collector

import (
	"sync"
	"time"

	"csmc/internal/core"
)

// Collector aggregates events from workers on its own goroutine.
type Collector struct {
	events    []core.Event
	ch        chan core.Event
	done      chan struct{}
	mu        sync.Mutex
	closeMu   sync.RWMutex
	closed    bool
	startTime time.Time
	endTime   time.Time
}

// NewCollector creates a new Collector and starts its collection goroutine.
func NewCollector() *Collector {
	c := &Collector{
		events:    make([]core.Event, 0),
		ch:        make(chan core.Event, 1000),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	go c.collect()
	return c
}

func (c *Collector) collect() {
	for event := range c.ch {
		c.mu.Lock()
		c.events = append(c.events, event)
		c.mu.Unlock()
	}
	close(c.done)
}

// Report sends an event to the collector. Thread-safe. Events are never
// dropped: a full buffer blocks the caller. Events after Close are ignored.
func (c *Collector) Report(event core.Event) {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	if c.closed {
		return
	}
	c.ch <- event
}

// Close stops accepting events and waits for the buffer to drain.
func (c *Collector) Close() {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	c.endTime = time.Now()
	close(c.ch)
	c.closeMu.Unlock()
	<-c.done
}

// Events returns a copy of collected events.
func (c *Collector) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]core.Event, len(c.events))
	copy(result, c.events)
	return result
}

// Duration returns the run duration.
// If the collector is closed, returns the duration from start to end.
// If still running, returns the duration from start to now.
func (c *Collector) Duration() time.Duration {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	if !c.endTime.IsZero() {
		return c.endTime.Sub(c.startTime)
	}
	return time.Since(c.startTime)
}

// Compute summarizes the events collected so far.
func (c *Collector) Compute() *Summary {
	return ComputeSummary(c.Events(), c.Duration())
}

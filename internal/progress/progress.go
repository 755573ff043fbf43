// Package progress draws a once-a-second status line for a running help center.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"csmc/internal/center"
)

// SnapshotFunc returns the current state of the center.
type SnapshotFunc func() center.Snapshot

// Progress owns the stderr status area. Start draws the live line; Print and
// Printf write whole messages above it. Quiet silences both.
type Progress struct {
	startTime time.Time
	snapshot  SnapshotFunc
	interval  time.Duration
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

func NewProgress(snapshot SnapshotFunc, quiet bool) *Progress {
	return &Progress{
		snapshot: snapshot,
		interval: time.Second,
		quiet:    quiet,
		output:   os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// SetInterval changes the refresh period. Must be called before Start.
func (p *Progress) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)
	go p.run(p.ticker, p.stopCh)
}

func (p *Progress) run(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	line := StatusLine(time.Since(p.startTime), p.snapshot())
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K%s\r", line)
	p.mu.Unlock()
}

// StatusLine renders one refresh of the status line.
func StatusLine(elapsed time.Duration, s center.Snapshot) string {
	elapsed = elapsed.Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("[%02d:%02d] Finished: %d/%d | Occupied: %d/%d | Sessions: %d | Rejections: %d",
		mins, secs, s.Finished, s.Students, s.Occupied, s.Seats, s.Sessions, s.Rejections)
}

func (p *Progress) Stop() {
	if p.quiet || p.ticker == nil || p.stopped.Swap(true) {
		return
	}
	p.ticker.Stop()
	close(p.stopCh)
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Print(message string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K%s\n", message)
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}

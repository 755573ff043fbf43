// Package coordinator builds a help center, runs its students and tutors,
// and reports the outcome once every student has finished.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"csmc/internal/center"
	"csmc/internal/config"
	"csmc/internal/core"
	"csmc/internal/invariant"
	"csmc/internal/ratelimit"
	"csmc/internal/worker"
)

var (
	// ErrWorkerPanic wraps a panic recovered from a student or tutor.
	ErrWorkerPanic = errors.New("worker panicked")
	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("coordinator already ran")
	// ErrInterrupted is returned when ctx ends the run before every
	// student finished.
	ErrInterrupted = errors.New("run interrupted")
)

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithReporter sends every event to r.
func WithReporter(r core.Reporter) Option {
	return func(c *Coordinator) { c.reporter = r }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clk core.Clock) Option {
	return func(c *Coordinator) { c.clock = clk }
}

// WithDoor overrides the arrival limiter built from the timing config.
func WithDoor(d *ratelimit.Door) Option {
	return func(c *Coordinator) { c.door = d }
}

// Result describes a finished or interrupted run.
type Result struct {
	RunID         string
	Elapsed       time.Duration
	Snapshot      center.Snapshot
	StudentHelps  map[int]int
	TutorSessions map[int]int
	Interrupted   bool
}

type Coordinator struct {
	cfg      *config.Config
	runID    uuid.UUID
	protocol *center.Protocol
	reporter core.Reporter
	clock    core.Clock
	door     *ratelimit.Door

	students []*worker.Student
	tutors   []*worker.Tutor

	activeTutors atomic.Int32
	stopChans    []chan struct{}
	stopMu       sync.Mutex
	ran          atomic.Bool

	errMu sync.Mutex
	errs  []error
}

// New validates cfg and builds the center. Workers are created here but
// start only in Run.
func New(cfg *config.Config, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Coordinator{
		cfg:      cfg,
		runID:    uuid.New(),
		reporter: core.NullReporter,
		clock:    core.RealClock{},
	}
	if cfg.Timing.ArrivalRate > 0 {
		c.door = ratelimit.NewDoor(cfg.Timing.ArrivalRate)
	}
	for _, opt := range opts {
		opt(c)
	}

	cc := cfg.Center
	c.protocol = center.NewProtocol(center.New(cc.Seats, cc.Students), cfg.PairingMode())
	env := &worker.Env{
		Protocol:      c.protocol,
		Clock:         c.clock,
		Reporter:      c.reporter,
		Door:          c.door,
		Unit:          cfg.Timing.Unit,
		MaxWork:       cfg.Timing.MaxWork,
		MaxHelp:       cfg.Timing.MaxHelp,
		RequiredHelps: cc.Helps,
		Students:      cc.Students,
		Seats:         cc.Seats,
		Seed:          cfg.Timing.Seed,
	}

	c.tutors = make([]*worker.Tutor, cc.Tutors)
	for i := range c.tutors {
		c.tutors[i] = worker.NewTutor(i+1, env)
	}
	c.students = make([]*worker.Student, cc.Students)
	for i := range c.students {
		c.students[i] = worker.NewStudent(i+1, env)
	}
	return c, nil
}

// RunID identifies this run in logs and summaries.
func (c *Coordinator) RunID() string { return c.runID.String() }

// Center exposes the shared center, e.g. for a progress display.
func (c *Coordinator) Center() *center.Center { return c.protocol.Center() }

// ActiveTutors returns how many tutor goroutines are still running.
func (c *Coordinator) ActiveTutors() int {
	return int(c.activeTutors.Load())
}

// Run starts every tutor and student and blocks until all students are
// done, then stops the tutors. The center is closed once every worker has
// returned, whatever the outcome. If ctx ends first the workers are
// abandoned mid-protocol, Result.Interrupted is set and the error wraps
// ErrInterrupted. A recovered worker panic cancels the run and
// is returned wrapped in ErrWorkerPanic.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	if c.ran.Swap(true) {
		return nil, ErrAlreadyRun
	}

	cc := c.cfg.Center
	logger := log.WithFields(log.Fields{
		"run":      c.RunID(),
		"students": cc.Students,
		"tutors":   cc.Tutors,
		"seats":    cc.Seats,
		"helps":    cc.Helps,
	})
	logger.WithField("pairing", c.protocol.Pairing()).Info("help center open")

	start := c.clock.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tutors errgroup.Group
	for _, tu := range c.tutors {
		c.spawnTutor(runCtx, cancel, &tutors, tu)
	}

	var students sync.WaitGroup
	for _, s := range c.students {
		students.Add(1)
		go func(s *worker.Student) {
			defer students.Done()
			if err := c.runStudent(runCtx, s); err != nil {
				c.fail(err)
				cancel()
			}
		}(s)
	}
	students.Wait()

	c.stopAllTutors()
	if err := tutors.Wait(); err != nil {
		logger.WithError(err).Debug("tutor pool ended with error")
	}
	invariant.Checkf(c.ActiveTutors() == 0, "%d tutors still running after join", c.ActiveTutors())

	res := c.result(start)
	c.protocol.Close()
	if err := c.failure(); err != nil {
		logger.WithError(err).Error("run failed")
		return res, err
	}
	if err := ctx.Err(); err != nil {
		res.Interrupted = true
		logger.WithField("finished", res.Snapshot.Finished).Warn("run interrupted")
		return res, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	invariant.Checkf(res.Snapshot.Finished == res.Snapshot.Students,
		"run completed with %d of %d students finished", res.Snapshot.Finished, res.Snapshot.Students)
	invariant.Checkf(res.Snapshot.Occupied == 0, "%d seats still occupied after completion", res.Snapshot.Occupied)
	c.reporter.Report(core.Event{Kind: core.AllHelped, Role: core.RoleCoordinator, Timestamp: c.clock.Now()})
	logger.WithFields(log.Fields{
		"elapsed":  res.Elapsed,
		"sessions": res.Snapshot.Sessions,
	}).Info("all students helped")
	return res, nil
}

func (c *Coordinator) spawnTutor(ctx context.Context, cancel context.CancelFunc, g *errgroup.Group, tu *worker.Tutor) {
	stop := make(chan struct{})
	c.stopMu.Lock()
	c.stopChans = append(c.stopChans, stop)
	c.stopMu.Unlock()

	c.activeTutors.Add(1)
	g.Go(func() (err error) {
		defer c.activeTutors.Add(-1)
		defer func() {
			if err != nil {
				c.fail(err)
				cancel()
			}
		}()
		defer c.recoverPanic(core.RoleTutor, tu.ID, &err)
		return tu.Run(ctx, stop)
	})
}

func (c *Coordinator) runStudent(ctx context.Context, s *worker.Student) (err error) {
	defer c.recoverPanic(core.RoleStudent, s.ID, &err)
	return s.Run(ctx)
}

// recoverPanic recovers from panics in worker goroutines, reports them as
// WorkerPanic events and turns them into the worker's error.
func (c *Coordinator) recoverPanic(role core.Role, id int, err *error) {
	if r := recover(); r != nil {
		c.reporter.Report(core.Event{
			Kind:      core.WorkerPanic,
			Role:      role,
			ActorID:   id,
			Timestamp: c.clock.Now(),
			Error:     fmt.Sprintf("panic: %v", r),
		})
		*err = fmt.Errorf("%w: %s %d: %v", ErrWorkerPanic, role, id, r)
	}
}

func (c *Coordinator) stopAllTutors() {
	c.stopMu.Lock()
	for _, ch := range c.stopChans {
		close(ch)
	}
	c.stopChans = nil
	c.stopMu.Unlock()
}

// fail records a worker error. Context errors are the echo of an interrupt
// or of another worker's failure and are not recorded.
func (c *Coordinator) fail(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	c.errMu.Lock()
	c.errs = append(c.errs, err)
	c.errMu.Unlock()
}

func (c *Coordinator) failure() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return errors.Join(c.errs...)
}

func (c *Coordinator) result(start time.Time) *Result {
	res := &Result{
		RunID:         c.RunID(),
		Elapsed:       c.clock.Since(start),
		Snapshot:      c.protocol.Center().Snapshot(),
		StudentHelps:  make(map[int]int, len(c.students)),
		TutorSessions: make(map[int]int, len(c.tutors)),
	}
	for _, s := range c.students {
		res.StudentHelps[s.ID] = s.Helps()
	}
	for _, tu := range c.tutors {
		res.TutorSessions[tu.ID] = tu.Sessions()
	}
	return res
}

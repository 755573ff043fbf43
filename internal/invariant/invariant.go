// Package invariant turns broken protocol invariants into fatal failures.
//
// A violation is a programming defect, never a user error, so the default
// executor panics. Tests swap the executor to observe violations.
package invariant

import (
	"fmt"
	"sync"
)

// ViolationError describes a broken invariant.
type ViolationError struct {
	Statement string
}

func (err ViolationError) Error() string {
	return "invariant violation: " + err.Statement
}

// ViolationExecutor decides what happens when an invariant is broken.
type ViolationExecutor interface {
	Exec(ViolationError)
}

// PanicExecutor panics with the ViolationError.
type PanicExecutor struct{}

func (PanicExecutor) Exec(err ViolationError) { panic(err) }

// RecordingExecutor keeps violations instead of panicking.
type RecordingExecutor struct {
	mu         sync.Mutex
	violations []ViolationError
}

func (r *RecordingExecutor) Exec(err ViolationError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, err)
}

func (r *RecordingExecutor) Violations() []ViolationError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ViolationError, len(r.violations))
	copy(out, r.violations)
	return out
}

var std = struct {
	mu       sync.Mutex
	executor ViolationExecutor
}{
	executor: PanicExecutor{},
}

func Check(cond bool, statement string) {
	if !cond {
		Violate(statement)
	}
}

func Checkf(cond bool, format string, args ...any) {
	if !cond {
		Violatef(format, args...)
	}
}

func Violate(statement string) {
	std.mu.Lock()
	exec := std.executor
	std.mu.Unlock()

	exec.Exec(ViolationError{Statement: statement})
}

func Violatef(format string, args ...any) {
	Violate(fmt.Sprintf(format, args...))
}

// SetExecutor installs exec and returns the previous executor.
func SetExecutor(exec ViolationExecutor) ViolationExecutor {
	std.mu.Lock()
	defer std.mu.Unlock()

	prev := std.executor
	std.executor = exec
	return prev
}

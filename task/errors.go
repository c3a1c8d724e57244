package task

import (
	"errors"
	"fmt"
)

// CyclicChainError is produced when a task is settled with itself in either
// the error or result slot. It is never wrapped; the task transitions
// straight to Error with this as its stored value.
type CyclicChainError struct {
	TaskID uint64
}

func (e *CyclicChainError) Error() string {
	return fmt.Sprintf("task: cyclic chain detected settling task %d with itself", e.TaskID)
}

// ConsumedError is panicked by Map/MapError/MapResult/Finally/ToPromiseLike
// when called on a task that already has a successor. It is a contract
// violation raised synchronously at the call site (a panic, not an error
// return threaded through every chaining call).
type ConsumedError struct {
	TaskID uint64
}

func (e *ConsumedError) Error() string {
	return fmt.Sprintf("task: task %d is already Consumed and cannot be mapped again", e.TaskID)
}

// ErrDeinited is the stable, errors.Is-matchable tag carried by every
// DeinitError, so callers can distinguish cancelation from ordinary errors
// without caring about a specific task's identity.
var ErrDeinited = errors.New("task: deinited")

// DeinitError is the synthetic payload written into a still-Pending task's
// error slot by deinit. It wraps ErrDeinited so errors.Is(err,
// task.ErrDeinited) reports true regardless of which task produced it.
type DeinitError struct {
	TaskID uint64
}

func (e *DeinitError) Error() string {
	return fmt.Sprintf("task: task %d canceled (deinit)", e.TaskID)
}

func (e *DeinitError) Unwrap() error {
	return ErrDeinited
}

// AggregateError is Any's all-rejected outcome: every input settled with an
// error, so the output carries all of them in input order — the familiar
// Promise.any rejection shape.
type AggregateError struct {
	Errors []any
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("task: all %d inputs to Any rejected", len(e.Errors))
}

// Unwrap exposes the individual error values so callers can use errors.Is
// and errors.As across the aggregate, for any element that itself satisfies
// error. Non-error values in Errors are skipped.
func (e *AggregateError) Unwrap() []error {
	out := make([]error, 0, len(e.Errors))
	for _, v := range e.Errors {
		if err, ok := v.(error); ok {
			out = append(out, err)
		}
	}
	return out
}

// errAlreadyObserved is the documented fallback outcome when settle() is
// asked to flatten a nested task that is both already Consumed (has a
// successor elsewhere) and already carries a finalizer: there is no free
// slot left to attach an observer to, so the settle that tried to adopt it
// fails with this diagnostic instead of silently losing the outcome.
//
// This is a genuinely rare edge case (see DESIGN.md for the reasoning);
// treating it as a reportable error rather than a panic keeps it catchable
// by ordinary mapError chains.
type errAlreadyObserved struct {
	TaskID uint64
}

func (e *errAlreadyObserved) Error() string {
	return fmt.Sprintf("task: task %d cannot be observed again (already Consumed and already has a finalizer)", e.TaskID)
}

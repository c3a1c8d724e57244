// Package tasktime supplies timer-based helpers for tasks, built entirely on
// the public Task surface (New, Race, Finalize) plus a time.Timer. It
// deliberately does not reach into Task internals: host timers are an
// external collaborator that plugs into the task/cancelation boundary from
// the outside, the same way a timeout wrapper layers onto a cancelable
// operation rather than teaching the operation about time.
//
// time.AfterFunc always fires its callback on a new goroutine, so both
// helpers hand that callback to Scheduler.Post before touching any Task —
// the same handoff a host uses to safely deliver a non-Task event (a
// completed network read, say) back onto the single goroutine that owns
// the task graph. A Scheduler with no RunSoon hook configured runs a
// posted callback inline on whichever goroutine called Post, which for a
// timer means its own background goroutine: callers relying on Timeout or
// Delay under concurrent access must wire a RunSoon hook that actually
// marshals onto their single task-owning goroutine.
package tasktime

import (
	"time"

	"github.com/joeycumines/gotask/task"
)

// TimeoutError is the error Timeout's returned task settles with when the
// deadline elapses before the guarded task settled on its own.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return "tasktime: operation timed out after " + e.Duration.String()
}

// Timeout returns a task that settles with whatever inner settles with, or
// — if inner has not settled after d — deinits inner and settles the
// returned task with a *TimeoutError. Either way the timer is stopped once
// the race is decided, so it never fires spuriously after the fact.
func Timeout(sched *task.Scheduler, inner *task.Task, d time.Duration) *task.Task {
	timedOut := task.New(sched)
	timer := time.AfterFunc(d, func() {
		sched.Post(func() {
			timedOut.Settle(&TimeoutError{Duration: d}, nil)
		})
	})
	// timedOut's own finalizer, not Race's output: this fires exactly once,
	// whether the timer actually elapsed (Stop is then a harmless no-op) or
	// Race deinited timedOut because inner won first (Stop then cancels the
	// still-pending timer so its callback never fires against a decided race).
	timedOut.Finalize(func(any, any) {
		timer.Stop()
	})

	return task.Race(sched, []any{inner, timedOut})
}

// Delay returns a task that settles with value after d elapses. Deiniting
// the returned task before the delay elapses stops the timer and the task
// never settles with value (it settles with the deinit error the ordinary
// way, via Task.Deinit).
func Delay(sched *task.Scheduler, d time.Duration, value any) *task.Task {
	out := task.New(sched)
	timer := time.AfterFunc(d, func() {
		sched.Post(func() {
			out.Settle(nil, value)
		})
	})
	out.Finalize(func(any, any) {
		timer.Stop()
	})
	return out
}

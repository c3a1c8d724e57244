package task

import "github.com/joeycumines/gotask/task/tasklog"

// RunSoon is the host "run soon" hook: a callable that invokes fn
// asynchronously, as soon as feasible, with no ordering guarantee beyond
// "after the current call stack unwinds". Typical hosts supply a next-tick
// primitive, a goroutine handoff through a work queue, or a minimum-delay
// timer as a fallback.
type RunSoon func(fn func())

// Scheduler holds a FIFO of tasks awaiting notification flush. It defers
// delivery through a host-provided RunSoon hook and exposes a synchronous
// Tick to drain the queue on demand, reduced to the single-threaded
// cooperative model this package targets: no locking, no poller, just a
// FIFO and a deferred flush.
type Scheduler struct {
	pending   queue[*Task]
	scheduled bool
	runSoon   RunSoon
	logger    tasklog.Logger
}

// NewScheduler constructs a Scheduler that defers flushes through runSoon.
// If runSoon is nil, the scheduler never self-schedules; the caller is
// expected to invoke Tick directly (useful for tests and for hosts that
// drive their own loop).
func NewScheduler(runSoon RunSoon, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{runSoon: runSoon, logger: tasklog.Default()}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// SchedulerOption configures a Scheduler at construction time via the
// standard functional-options pattern.
type SchedulerOption interface {
	apply(*Scheduler)
}

type schedulerOptionFunc func(*Scheduler)

func (f schedulerOptionFunc) apply(s *Scheduler) { f(s) }

// WithSchedulerLogger sets the logger the scheduler uses to report panics
// recovered during Tick (see Tick's doc comment for the exact policy).
func WithSchedulerLogger(logger tasklog.Logger) SchedulerOption {
	return schedulerOptionFunc(func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// push appends t to the pending FIFO and, if not already scheduled, asks
// the host to run Tick soon.
func (s *Scheduler) push(t *Task) {
	s.pending.push(t)
	if !s.scheduled {
		s.scheduled = true
		if s.runSoon != nil {
			s.runSoon(s.Tick)
		}
	}
}

// Tick synchronously drains the pending FIFO, calling each task's
// finishPending in order. A panic from one task's finishPending is
// recovered and logged so the remaining queue still drains (the FIFO must
// never get stuck in a scheduled-but-empty state with undelivered
// notifications), but the first panic observed is re-raised once the whole
// queue has been drained, so programmer errors are never silently
// swallowed.
func (s *Scheduler) Tick() {
	s.scheduled = false
	var firstPanic any
	for {
		item, ok := s.pending.shift()
		if !ok {
			break
		}
		s.runOne(item, &firstPanic)
	}
	if firstPanic != nil {
		panic(firstPanic)
	}
}

func (s *Scheduler) runOne(t *Task, firstPanic *any) {
	defer func() {
		if rec := recover(); rec != nil {
			if *firstPanic == nil {
				*firstPanic = rec
			}
			s.logger.Log(taskLogEntry(tasklogLevelError(), "scheduler", t.id, "panic recovered while flushing task", recoverAsError(rec)))
		}
	}()
	t.finishPending()
}

// Post hands fn to the scheduler's RunSoon hook, or runs it inline if none
// is configured. It exists for external collaborators — a timer callback, a
// network read completing on its own goroutine — that need to get back
// onto the single logical goroutine that owns this scheduler's task graph
// before touching any Task. Calling fn directly from such a goroutine
// instead of through Post violates the single-goroutine contract.
func (s *Scheduler) Post(fn func()) {
	if s.runSoon == nil {
		fn()
		return
	}
	s.runSoon(fn)
}

// Deinit empties the pending FIFO without delivering any notifications to
// the tasks it held. It does not deinit those tasks; it only severs the
// scheduler's non-owning reference to them — the scheduler never owns the
// tasks it schedules.
func (s *Scheduler) Deinit() {
	s.pending = queue[*Task]{}
	s.scheduled = false
}

// DefaultScheduler is the process-global default scheduler used when New
// (and the other constructors) receive a nil *Scheduler. It has no RunSoon
// hook configured; callers embedding this package in an application are
// expected to call DefaultScheduler.Tick from their own event loop, or to
// call SetDefaultRunSoon once at startup to wire one in.
var DefaultScheduler = NewScheduler(nil)

// SetDefaultRunSoon installs the host "run soon" hook on DefaultScheduler.
// It is provided because DefaultScheduler is constructed before any host is
// known; call it once during application startup.
func SetDefaultRunSoon(runSoon RunSoon) {
	DefaultScheduler.runSoon = runSoon
}

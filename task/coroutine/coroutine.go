// Package coroutine implements the task engine's coroutine/generator
// driver: it turns a stepwise resumable procedure into a *task.Task,
// treating each yielded task as a suspension point. Termination is threaded
// through a running driver the same way cancelation propagates through any
// task chain, via Task.Finalize (task's library-internal cleanup hook)
// rather than a separate mechanism.
package coroutine

import "github.com/joeycumines/gotask/task"

// Step is the outcome of resuming a Procedure once: either Done (the
// procedure completed, possibly with a value that is itself a Task or a
// nested Procedure) or a yielded value awaiting resumption.
type Step struct {
	Done  bool
	Value any
}

// Procedure is a cooperative producer driven by the coroutine Driver. Each
// call resumes the procedure with the previous step's payload (or, on the
// very first call, with resumeErr == nil and resumeValue == nil); the
// procedure reports its next Step.
//
// On resumption with a non-nil resumeErr, the procedure is expected to
// raise that error at the point it last yielded (so a recovering procedure
// can catch it, e.g. via a panic/recover pair internally, and yield a
// recovery value instead).
//
// Terminate asks the procedure to run its cleanup path (analogous to
// closing a Go generator-shaped iterator) and reports any error encountered
// while doing so.
type Procedure interface {
	Resume(resumeErr, resumeValue any) Step
	Terminate() error
}

// Scheduler is an alias kept local to this package so callers driving a
// coroutine need not import the task package just to name the type; it is
// always *task.Scheduler underneath.
type Scheduler = task.Scheduler

// Drive converts proc into a *task.Task scheduled on sched. The returned
// task settles with whatever the procedure's Done step reports (flattened
// if that value is itself a Task, via ordinary Task.Settle semantics).
//
// A yielded value is handled as follows:
//   - *task.Task: the driver maps over it to feed the result (or injected
//     error) back into the procedure.
//   - Procedure: wrapped recursively via Drive and treated as a *task.Task
//     suspension point.
//   - any other value: fed back into the procedure on the next iteration of
//     the driving loop, not via a recursive Go call, so a procedure that
//     yields plain values in a tight loop cannot overflow the stack — the
//     loop drives iteratively for hosts with a small stack budget.
//
// Deiniting the returned task terminates proc (running its cleanup path)
// and deinits whatever suspension task is currently outstanding.
func Drive(sched *Scheduler, proc Procedure) *task.Task {
	d := &driver{sched: sched, proc: proc, out: task.New(sched)}
	d.out.Finalize(d.onFinalize)
	d.step(nil, nil)
	return d.out
}

type driver struct {
	sched    *Scheduler
	proc     Procedure
	out      *task.Task
	current  *task.Task // the outstanding suspension task, if any
	finished bool       // true once the driver will never resume proc again
}

// onFinalize is out's finalizer (Task.Finalize): it fires exactly once,
// whether out was settled normally (via finish, in which case finished is
// already true and this is a no-op) or canceled (via Deinit, in which case
// this is the driver's only chance to terminate proc and deinit the
// outstanding suspension).
func (d *driver) onFinalize(err, res any) {
	if d.finished {
		return
	}
	d.finished = true
	if d.current != nil {
		cur := d.current
		d.current = nil
		cur.Deinit()
	}
	_ = d.proc.Terminate()
}

// step iteratively drives the procedure: a plain yielded value is fed back
// on the next loop iteration rather than via a recursive step call,
// bounding stack growth regardless of how many plain values the procedure
// yields in a row.
func (d *driver) step(resumeErr, resumeValue any) {
	for {
		if d.finished {
			return
		}
		s := d.resume(resumeErr, resumeValue)
		if d.finished {
			return
		}
		if s.Done {
			d.finish(s.Value)
			return
		}
		switch v := s.Value.(type) {
		case *task.Task:
			d.suspendOn(v)
			return
		case Procedure:
			d.suspendOn(Drive(d.sched, v))
			return
		default:
			resumeErr, resumeValue = nil, v
			continue
		}
	}
}

func (d *driver) resume(resumeErr, resumeValue any) (s Step) {
	defer func() {
		if rec := recover(); rec != nil {
			d.finished = true
			d.out.Settle(rec, nil)
		}
	}()
	return d.proc.Resume(resumeErr, resumeValue)
}

// suspendOn maps over the yielded task to feed its outcome back into the
// procedure: on success, resume with the value; on error, resume by
// injecting the error at the yield point (the procedure may catch it).
func (d *driver) suspendOn(yielded *task.Task) {
	d.current = yielded
	yielded.Map(func(err, res any) (any, any) {
		if d.finished {
			return nil, nil
		}
		d.current = nil
		d.step(err, res)
		return nil, nil
	})
}

func (d *driver) finish(value any) {
	d.finished = true
	d.out.Settle(nil, value)
}

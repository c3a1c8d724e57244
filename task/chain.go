package task

// Map requires a non-nil fn and panics with *ConsumedError if the receiver
// is already Consumed. It marks the receiver Consumed, clears its
// PendingRejection (the new successor now owns observing it), creates a new
// Pending task whose mapper is fn, links it as the receiver's successor,
// and — if the receiver is already settled — schedules the receiver for
// flush so the new successor is notified on the next Tick. Returns the new
// task.
func (t *Task) Map(fn Mapper) *Task {
	if fn == nil {
		panic("task: Map requires a non-nil Mapper")
	}
	if t.consumed {
		panic(&ConsumedError{TaskID: t.id})
	}
	t.consumed = true
	t.pendingRejection = false

	child := New(t.scheduler)
	child.mapper = fn
	child.predecessor = t
	t.successor = child

	if t.state != Pending {
		t.scheduler.push(t)
	}
	return child
}

// MapError is a convenience over Map: on error, fn recovers into the
// result slot; on success, the result passes through unchanged. A panic
// from fn becomes the new error slot.
func (t *Task) MapError(fn func(err any) any) *Task {
	return t.Map(func(err, res any) (any, any) {
		if err == nil {
			return nil, res
		}
		return nil, fn(err)
	})
}

// MapResult is a convenience over Map: on success, fn transforms the
// result; on error, the error passes through unchanged (mapResult always
// rethrows). A panic from fn becomes the new error slot.
func (t *Task) MapResult(fn func(res any) any) *Task {
	return t.Map(func(err, res any) (any, any) {
		if err != nil {
			return err, nil
		}
		return nil, fn(res)
	})
}

// FinallyFunc is run with whichever outcome the task settled with, purely
// for its side effects. If it returns a *Task, the chain waits for that
// task to settle before propagating the original outcome onward — unless
// the waited task itself errors, in which case that error replaces the
// original outcome, mirroring how a JS `finally` that returns a rejecting
// promise overrides the settled value it was attached to.
type FinallyFunc func(err, res any) any

// Finally is a convenience over Map that never changes the outcome unless
// fn panics or fn's returned task errors.
func (t *Task) Finally(fn FinallyFunc) *Task {
	return t.Map(func(err, res any) (any, any) {
		ret := fn(err, res)
		nested, ok := ret.(*Task)
		if !ok {
			return err, res
		}
		// Wait for nested, then replay the original outcome — unless
		// nested itself errors, in which case that error wins. restore is
		// a throwaway task never exposed to the caller; it exists purely
		// to carry the "what to yield once nested settles" decision
		// through the ordinary flattening path in Settle.
		restore := nested.Map(func(nErr, _ any) (any, any) {
			if nErr != nil {
				return nErr, nil
			}
			return err, res
		})
		// restore already carries the fully-resolved (err, res) pair to yield
		// once nested settles; route it through the result slot so flattening
		// adopts it unchanged instead of rethrowing it as an error.
		return nil, restore
	})
}

// Weak returns a new Pending task appended to the receiver's weak-branch
// FIFO. Weak branches receive a copy of the outcome but never own (and so
// never cancel) the parent. If the parent is already settled, it is
// rescheduled so the new branch still receives the outcome.
func (t *Task) Weak() *Task {
	branch := New(t.scheduler)
	t.weakBranches.push(branch)
	if t.state != Pending {
		t.scheduler.push(t)
	}
	return branch
}

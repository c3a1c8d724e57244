package task

// combinatorEntry pairs a task argument with its position in the original
// input slice, so deinit-the-losers and ordered-output bookkeeping can
// still find their place after non-task entries have been filtered out.
type combinatorEntry struct {
	idx int
	t   *Task
}

// attachObserver wires cb to fire exactly once with nested's eventual
// outcome. If nested's finalizer slot is still free, it is installed there
// directly (the common case — nested was handed to us fresh); otherwise
// nested is mapped, which requires it to be unconsumed. A nested task that
// is both already Consumed and already carries a finalizer cannot be
// observed this way (see errAlreadyObserved) — combinators do not hit that
// path in practice, since they always see their inputs before any other
// consumer does. Either way cb counts as nested's consumer: an error nested
// settles with is handed to cb and does not reach the unhandled-rejection
// hook.
func attachObserver(nested *Task, idx int, cb func(idx int, err, res any)) {
	if nested.finalizer == nil {
		nested.finalizer = func(err, res any) {
			nested.pendingRejection = false
			cb(idx, err, res)
		}
		if nested.state != Pending {
			nested.scheduler.push(nested)
		}
		return
	}
	nested.Map(func(err, res any) (any, any) {
		cb(idx, err, res)
		return nil, nil
	})
}

// All settles with an ordered slice of resolved values ([]any) in input
// order, or with the first error observed among items (a mix of plain
// values and *Task). An empty list resolves immediately with an empty
// slice.
func All(sched *Scheduler, items []any) *Task {
	out := New(sched)
	values := make([]any, len(items))
	var entries []combinatorEntry

	for i, item := range items {
		nested, ok := item.(*Task)
		if !ok {
			values[i] = item
			continue
		}
		entries = append(entries, combinatorEntry{i, nested})
	}

	errFound := false
	var errVal any
	for _, e := range entries {
		if e.t.state == Error {
			errFound, errVal = true, e.t.value
			break
		}
	}
	if errFound {
		out.terminal(errVal, nil)
		for _, e := range entries {
			e.t.Deinit()
		}
		return out
	}

	pendingCount := 0
	finish := func(idx int, err, res any) {
		if out.state != Pending {
			return
		}
		if err != nil {
			out.terminal(err, nil)
			for _, e := range entries {
				e.t.Deinit()
			}
			return
		}
		values[idx] = res
		pendingCount--
		if pendingCount == 0 {
			out.terminal(nil, append([]any(nil), values...))
		}
	}

	for _, e := range entries {
		if e.t.state == Success && !e.t.consumed {
			e.t.consumed = true
			values[e.idx] = e.t.value
			continue
		}
		pendingCount++
		attachObserver(e.t, e.idx, finish)
	}

	if pendingCount == 0 {
		out.terminal(nil, append([]any(nil), values...))
		return out
	}

	out.finalizer = func(any, any) {
		for _, e := range entries {
			e.t.Deinit()
		}
	}
	return out
}

// Race forwards the first observed outcome among items (already-settled
// inputs inspected in input order during construction; a non-task input
// immediately wins) to the output task, then deinits every other input.
// An empty list resolves with the null sentinel (nil, nil).
func Race(sched *Scheduler, items []any) *Task {
	out := New(sched)
	if len(items) == 0 {
		out.terminal(nil, nil)
		return out
	}

	var entries []combinatorEntry
	winFound := false
	var winErr, winRes any

	for i, item := range items {
		nested, ok := item.(*Task)
		if !ok {
			if !winFound {
				winFound, winErr, winRes = true, nil, item
			}
			continue
		}
		entries = append(entries, combinatorEntry{i, nested})
		if winFound {
			continue
		}
		switch nested.state {
		case Error:
			winFound, winErr = true, nested.value
		case Success:
			if !nested.consumed {
				nested.consumed = true
				winFound, winRes = true, nested.value
			}
		}
	}

	if winFound {
		out.terminal(winErr, winRes)
		for _, e := range entries {
			e.t.Deinit()
		}
		return out
	}

	finish := func(idx int, err, res any) {
		if out.state != Pending {
			return
		}
		out.terminal(err, res)
		for _, e := range entries {
			e.t.Deinit()
		}
	}
	for _, e := range entries {
		attachObserver(e.t, e.idx, finish)
	}
	return out
}

// Outcome is one element of AllSettled's result slice: either the
// successful value (OK true) or the error value (OK false) an input
// settled with, tagged with its original input position.
type Outcome struct {
	Index int
	OK    bool
	Value any
}

// AllSettled is like All but never short-circuits on error and never
// cancels siblings: the output resolves (success slot) with an ordered
// []Outcome once every input has settled. An empty list resolves
// immediately with an empty slice.
func AllSettled(sched *Scheduler, items []any) *Task {
	out := New(sched)
	outcomes := make([]Outcome, len(items))
	var entries []combinatorEntry

	for i, item := range items {
		nested, ok := item.(*Task)
		if !ok {
			outcomes[i] = Outcome{Index: i, OK: true, Value: item}
			continue
		}
		entries = append(entries, combinatorEntry{i, nested})
	}

	pendingCount := 0
	finish := func(idx int, err, res any) {
		if err != nil {
			outcomes[idx] = Outcome{Index: idx, OK: false, Value: err}
		} else {
			outcomes[idx] = Outcome{Index: idx, OK: true, Value: res}
		}
		pendingCount--
		if pendingCount == 0 && out.state == Pending {
			out.terminal(nil, append([]Outcome(nil), outcomes...))
		}
	}

	for _, e := range entries {
		switch e.t.state {
		case Error:
			e.t.pendingRejection = false
			outcomes[e.idx] = Outcome{Index: e.idx, OK: false, Value: e.t.value}
		case Success:
			if !e.t.consumed {
				e.t.consumed = true
				outcomes[e.idx] = Outcome{Index: e.idx, OK: true, Value: e.t.value}
			} else {
				pendingCount++
				attachObserver(e.t, e.idx, finish)
			}
		default:
			pendingCount++
			attachObserver(e.t, e.idx, finish)
		}
	}

	if pendingCount == 0 {
		out.terminal(nil, append([]Outcome(nil), outcomes...))
		return out
	}
	out.finalizer = func(any, any) {
		for _, e := range entries {
			e.t.Deinit()
		}
	}
	return out
}

// Any is like Race but a per-input error does not win: the output only
// settles successfully on the first success. If every input errors, the
// output settles with an *AggregateError (errors in input order). An empty
// list settles immediately with an empty AggregateError.
func Any(sched *Scheduler, items []any) *Task {
	out := New(sched)
	if len(items) == 0 {
		out.terminal(&AggregateError{}, nil)
		return out
	}

	var entries []combinatorEntry
	winFound := false
	var winRes any

	for i, item := range items {
		nested, ok := item.(*Task)
		if !ok {
			if !winFound {
				winFound, winRes = true, item
			}
			continue
		}
		entries = append(entries, combinatorEntry{i, nested})
		if winFound {
			continue
		}
		if nested.state == Success && !nested.consumed {
			nested.consumed = true
			winFound, winRes = true, nested.value
		}
	}

	if winFound {
		out.terminal(nil, winRes)
		for _, e := range entries {
			e.t.Deinit()
		}
		return out
	}

	errs := make([]any, len(items))
	remaining := len(entries)
	if remaining == 0 {
		out.terminal(&AggregateError{}, nil)
		return out
	}

	finish := func(idx int, err, res any) {
		if out.state != Pending {
			return
		}
		if err == nil {
			out.terminal(nil, res)
			for _, e := range entries {
				e.t.Deinit()
			}
			return
		}
		errs[idx] = err
		remaining--
		if remaining == 0 {
			out.terminal(&AggregateError{Errors: errs}, nil)
		}
	}

	for _, e := range entries {
		attachObserver(e.t, e.idx, finish)
	}
	return out
}

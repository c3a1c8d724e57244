package task

// Deinit cancels t. If t is currently running its mapper (the Mapping
// flag), Deinit returns immediately and silently — the mapper will finish
// first, and any outcome it produces is handled by the ordinary Settle
// path. Otherwise:
//
//  1. If t is still Pending, it is settled with a *DeinitError and its
//     PendingRejection is cleared immediately (a deinit error is
//     considered handled by the act of cancelation).
//  2. t's finalizer, if any, runs synchronously (combinators use this to
//     cancel siblings).
//  3. t's previously-held predecessor, if any, is deinited synchronously.
//  4. If step 1's settle itself produced a new predecessor (e.g. because
//     settling with a DeinitError triggered flattening — which cannot
//     happen here, but the case is handled for symmetry with settling
//     paths that might attach one), that predecessor is deinited too.
//
// Steps 2-4 each run independently recovered, so a panic in one does not
// prevent the others from running. The observable effect: upstream
// finalizers run synchronously, before Deinit returns (immediate cleanup of
// timers, sockets, and the like); the descendant receives the deinit error
// through the normal scheduled settle path, and may catch it via any map
// operation. Deinit is idempotent: calling it again on an already-deinited
// (or otherwise already-settled) task leaves its outcome unchanged; it
// clears PendingRejection, runs a finalizer that has not run yet, and
// deinits the task's predecessor, if it still has one.
func (t *Task) Deinit() {
	if t.mapping {
		return
	}

	savedPredecessor := t.predecessor
	t.predecessor = nil

	if t.state == Pending {
		t.terminal(&DeinitError{TaskID: t.id}, nil)
		t.pendingRejection = false
	} else {
		t.pendingRejection = false
	}

	safeRun(func() {
		if t.finalizer != nil {
			fin := t.finalizer
			t.finalizer = nil
			fin(t.errSlot(), t.resSlot())
		}
	})

	safeRun(func() {
		if savedPredecessor != nil {
			savedPredecessor.Deinit()
		}
	})

	safeRun(func() {
		if newPredecessor := t.predecessor; newPredecessor != nil {
			t.predecessor = nil
			newPredecessor.Deinit()
		}
	})
}

// safeRun executes fn, logging and swallowing any panic so that sibling
// cleanup steps in Deinit still run: a panic in one step must not prevent
// the others from running.
func safeRun(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			packageLogger.Log(taskLogEntry(tasklogLevelError(), "task", 0, "panic recovered during deinit cleanup", recoverAsError(rec)))
		}
	}()
	fn()
}

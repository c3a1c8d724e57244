package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeinitSettlesPendingTaskWithDeinitError(t *testing.T) {
	sched := newTestScheduler()
	tk := New(sched)
	tk.Deinit()
	_, err, ok := tk.Deref()
	require.True(t, ok)
	require.IsType(t, &DeinitError{}, err)
	assert.True(t, errors.Is(err.(error), ErrDeinited))
}

func TestDeinitIsIdempotent(t *testing.T) {
	sched := newTestScheduler()
	tk := New(sched)
	tk.Deinit()
	res1, err1, _ := tk.Deref()
	tk.Deinit()
	res2, err2, _ := tk.Deref()
	assert.Equal(t, res1, res2)
	assert.Equal(t, err1, err2)
}

func TestDeinitOnAlreadySettledTaskIsNoop(t *testing.T) {
	sched := newTestScheduler()
	tk := FromResult(sched, "v")
	tk.Deinit()
	res, _, ok := tk.Deref()
	require.True(t, ok)
	assert.Equal(t, "v", res)
}

func TestDeinitPropagatesUpstreamSynchronously(t *testing.T) {
	sched := newTestScheduler()
	root := New(sched)
	child := root.MapResult(func(r any) any { return r })
	child.Deinit()
	// root must be canceled synchronously, before Tick even runs.
	_, err, ok := root.Deref()
	require.True(t, ok)
	assert.IsType(t, &DeinitError{}, err)
}

func TestDeinitNotifiesDescendantAsynchronously(t *testing.T) {
	sched := newTestScheduler()
	root := New(sched)
	child := root.MapResult(func(r any) any { return r })
	root.Deinit()
	_, _, ok := child.Deref()
	assert.False(t, ok, "descendant notification is deferred to the scheduler")
	sched.Tick()
	_, err, ok := child.Deref()
	require.True(t, ok)
	assert.IsType(t, &DeinitError{}, err)
}

func TestDeinitRunsFinalizerSynchronously(t *testing.T) {
	sched := newTestScheduler()
	tk := New(sched)
	ran := false
	tk.Finalize(func(err, res any) { ran = true })
	tk.Deinit()
	assert.True(t, ran)
}

func TestDeinitReentrantFromWithinMapperIsNoop(t *testing.T) {
	sched := newTestScheduler()
	var childDuringMapper *Task
	parent := New(sched)
	child := parent.Map(func(err, res any) (any, any) {
		// Deiniting the output while its own mapper is still running must
		// be a no-op: the mapper's result still determines the outcome.
		childDuringMapper.Deinit()
		return nil, "mapped"
	})
	childDuringMapper = child
	parent.Settle(nil, "v")
	sched.Tick()
	res, _, ok := child.Deref()
	require.True(t, ok)
	assert.Equal(t, "mapped", res, "reentrant Deinit during mapping must not override the mapper's outcome")
}

func TestDeinitClearsPendingRejection(t *testing.T) {
	sched := newTestScheduler()
	tk := FromError(sched, "boom")
	tk.Deinit()
	sched.Tick()
	// no panic from the unhandled-rejection hook means PendingRejection was
	// cleared by Deinit, since the default hook panics when it fires.
}

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeycumines/gotask/task/tasklog"
)

// fnLogger adapts a func(string) into a tasklog.Logger for test assertions
// on the message text alone.
type fnLogger func(msg string)

func (f fnLogger) IsEnabled(tasklog.Level) bool { return true }

func (f fnLogger) Log(entry tasklog.Entry) { f(entry.Message) }

func TestSchedulerTickDrainsInFIFOOrder(t *testing.T) {
	sched := newTestScheduler()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		tk := New(sched)
		tk.Finalize(func(any, any) { order = append(order, i) })
		tk.Settle(nil, i)
	}
	sched.Tick()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestSchedulerRunSoonInvokedOnceUntilDrained(t *testing.T) {
	var calls int
	var captured func()
	sched := NewScheduler(func(fn func()) {
		calls++
		captured = fn
	})
	a := New(sched)
	b := New(sched)
	a.Settle(nil, "a")
	b.Settle(nil, "b")
	assert.Equal(t, 1, calls, "pushing multiple tasks before a drain must only request one run-soon")
	captured()
}

func TestSchedulerReschedulesAfterDrain(t *testing.T) {
	var calls int
	sched := NewScheduler(func(fn func()) {
		calls++
		fn()
	})
	New(sched).Settle(nil, "a")
	assert.Equal(t, 1, calls)
	New(sched).Settle(nil, "b")
	assert.Equal(t, 2, calls, "a fresh push after the prior drain completed must request run-soon again")
}

func TestSchedulerTickRecoversPanicAndContinuesDraining(t *testing.T) {
	sched := newTestScheduler()
	var secondRan bool
	first := New(sched)
	first.Finalize(func(any, any) { panic("first blew up") })
	first.Settle(nil, "x")

	second := New(sched)
	second.Finalize(func(any, any) { secondRan = true })
	second.Settle(nil, "y")

	assert.PanicsWithValue(t, "first blew up", func() { sched.Tick() })
	assert.True(t, secondRan, "a panic in one task's notification must not stop the rest of the drain")
}

func TestSchedulerTickRepanicsOnlyFirstObserved(t *testing.T) {
	sched := newTestScheduler()
	first := New(sched)
	first.Finalize(func(any, any) { panic("first") })
	first.Settle(nil, "x")

	second := New(sched)
	second.Finalize(func(any, any) { panic("second") })
	second.Settle(nil, "y")

	assert.PanicsWithValue(t, "first", func() { sched.Tick() })
}

func TestSchedulerDeinitEmptiesQueueWithoutNotifying(t *testing.T) {
	sched := newTestScheduler()
	var ran bool
	tk := New(sched)
	tk.Finalize(func(any, any) { ran = true })
	tk.Settle(nil, "v")
	sched.Deinit()
	sched.Tick()
	assert.False(t, ran, "Deinit on the scheduler severs pending notifications entirely")
}

func TestWithSchedulerLoggerIsApplied(t *testing.T) {
	var got string
	logger := fnLogger(func(msg string) { got = msg })
	sched := NewScheduler(nil, WithSchedulerLogger(logger))
	tk := New(sched)
	tk.Finalize(func(any, any) { panic("boom") })
	tk.Settle(nil, "v")
	assert.PanicsWithValue(t, "boom", func() { sched.Tick() })
	assert.Contains(t, got, "panic recovered")
}

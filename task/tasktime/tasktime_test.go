package tasktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/gotask/task"
)

func TestTimeoutResolvesWithInnerWhenItSettlesFirst(t *testing.T) {
	sched := task.NewScheduler(nil)
	inner := task.New(sched)
	out := Timeout(sched, inner, time.Hour)
	inner.Settle(nil, "inner-value")
	sched.Tick()
	res, err, ok := out.Deref()
	require.True(t, ok)
	assert.Nil(t, err)
	assert.Equal(t, "inner-value", res)
}

func TestTimeoutFiresWhenInnerNeverSettles(t *testing.T) {
	sched := task.NewScheduler(nil)
	inner := task.New(sched)
	out := Timeout(sched, inner, time.Millisecond)
	require.Eventually(t, func() bool {
		sched.Tick()
		_, _, ok := out.Deref()
		return ok
	}, time.Second, time.Millisecond)
	_, err, ok := out.Deref()
	require.True(t, ok)
	require.IsType(t, &TimeoutError{}, err)

	_, innerErr, innerOK := inner.Deref()
	require.True(t, innerOK, "the guarded task must be deinited once the deadline elapses")
	assert.IsType(t, &task.DeinitError{}, innerErr)
}

func TestTimeoutErrorMessageNamesDuration(t *testing.T) {
	err := &TimeoutError{Duration: 5 * time.Second}
	assert.Contains(t, err.Error(), "5s")
}

func TestDelaySettlesWithValueAfterDuration(t *testing.T) {
	sched := task.NewScheduler(nil)
	out := Delay(sched, time.Millisecond, "delayed-value")
	require.Eventually(t, func() bool {
		sched.Tick()
		_, _, ok := out.Deref()
		return ok
	}, time.Second, time.Millisecond)
	res, err, ok := out.Deref()
	require.True(t, ok)
	assert.Nil(t, err)
	assert.Equal(t, "delayed-value", res)
}

func TestDelayDeinitBeforeElapseSettlesWithDeinitError(t *testing.T) {
	sched := task.NewScheduler(nil)
	out := Delay(sched, time.Hour, "never")
	out.Deinit()
	_, err, ok := out.Deref()
	require.True(t, ok)
	assert.IsType(t, &task.DeinitError{}, err)
}

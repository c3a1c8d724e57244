package task

import (
	"fmt"

	"github.com/joeycumines/gotask/task/tasklog"
)

// UnhandledRejectionHook is invoked when a task settles with Error, has no
// consumer (weak branches do not count as one), and the scheduler flushes it
// with PendingRejection still set. The default hook rethrows the stored error
// synchronously, as a panic, at the scheduler's next drain.
type UnhandledRejectionHook func(t *Task)

var (
	unhandledRejectionHook UnhandledRejectionHook = defaultUnhandledRejectionHook
	packageLogger          tasklog.Logger         = tasklog.Default()
)

// SetUnhandledRejectionHook replaces the process-wide unhandled-rejection
// hook. Passing nil restores the default (rethrow) behavior.
func SetUnhandledRejectionHook(hook UnhandledRejectionHook) {
	if hook == nil {
		hook = defaultUnhandledRejectionHook
	}
	unhandledRejectionHook = hook
}

// SetLogger installs the tasklog.Logger used by the task engine for
// diagnostic output (panics recovered during Deinit cleanup, unhandled
// rejections). A Scheduler logs panics recovered during Tick through its own
// logger instead (see WithSchedulerLogger). Passing nil restores the no-op
// default.
func SetLogger(logger tasklog.Logger) {
	if logger == nil {
		logger = tasklog.Default()
	}
	packageLogger = logger
}

func defaultUnhandledRejectionHook(t *Task) {
	panic(fmt.Sprintf("task: unhandled rejection on task %d: %v", t.id, t.value))
}

func invokeUnhandledRejection(t *Task) {
	packageLogger.Log(taskLogEntry(tasklog.LevelWarn, "task", t.id, "unhandled rejection", recoverAsError(t.value)))
	unhandledRejectionHook(t)
}

func taskLogEntry(level tasklog.Level, category string, taskID uint64, message string, err error) tasklog.Entry {
	return tasklog.Entry{
		Level:    level,
		Category: category,
		TaskID:   taskID,
		Message:  message,
		Err:      err,
	}
}

func tasklogLevelError() tasklog.Level { return tasklog.LevelError }

// recoverAsError normalizes an arbitrary recovered/stored value (which, per
// this library's JS-flavored error slot, need not already satisfy error)
// into an error for logging purposes.
func recoverAsError(v any) error {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}

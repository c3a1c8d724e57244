package tasklog

import (
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to tasklog.Logger via
// github.com/joeycumines/logiface and its github.com/joeycumines/izerolog
// backend, giving structured logging on top of zerolog. This is the "real"
// Logger implementation callers reach for outside of tests; NoOp covers
// everything else.
type ZerologLogger struct {
	logger *logiface.Logger[*izerolog.Event]
}

// NewZerologLogger builds a ZerologLogger writing through zl, gated at
// minLevel (entries below minLevel are dropped before any allocation).
func NewZerologLogger(zl zerolog.Logger, minLevel Level) *ZerologLogger {
	return &ZerologLogger{
		logger: logiface.New[*izerolog.Event](
			izerolog.WithZerolog(zl),
			logiface.WithLevel[*izerolog.Event](toLogifaceLevel(minLevel)),
		),
	}
}

func (z *ZerologLogger) IsEnabled(level Level) bool {
	return z.logger.Level() >= toLogifaceLevel(level)
}

func (z *ZerologLogger) Log(entry Entry) {
	b := z.logger.Build(toLogifaceLevel(entry.Level))
	if b == nil || !b.Enabled() {
		return
	}
	if entry.Category != "" {
		b.Str("category", entry.Category)
	}
	if entry.TaskID != 0 {
		b.Uint64("task_id", entry.TaskID)
	}
	if entry.Err != nil {
		b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

func toLogifaceLevel(level Level) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

// Package telemetry wires this project's ambient logging and
// diagnostic rate limiting: github.com/joeycumines/logiface as the
// structured-logging facade, github.com/joeycumines/izerolog as its
// concrete backend (github.com/rs/zerolog underneath), and
// github.com/joeycumines/go-catrate to throttle log lines that could
// otherwise fire once per coherence message under stress.
package telemetry

import (
	"io"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around a logiface.Logger[*izerolog.Event],
// adding per-category throttling for high-frequency diagnostics. The
// zero value is safe to call (all methods degrade to no-ops), matching
// logiface's own nil-safety so callers never need a nil check before
// logging.
type Logger struct {
	l       *logiface.Logger[*izerolog.Event]
	limiter *catrate.Limiter
}

// New constructs a Logger writing to w at the given minimum level, with
// the fixed per-category rate windows below. A Logger without a limiter
// (Disabled, or a nil Logger) does no throttling: Allow always reports
// true.
func New(w io.Writer, level logiface.Level) *Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{
		l: izerolog.L.New(
			izerolog.L.WithZerolog(zl),
			izerolog.L.WithLevel(level),
		),
		// Allow at most one diagnostic line per category (e.g. per
		// worker ID) per 50ms, with a higher ceiling over a 1s window
		// to still surface bursts without drowning in them. The 1s
		// density (15/s) must stay strictly below the 50ms density
		// (1/50ms == 20/s) or catrate.NewLimiter panics.
		limiter: catrate.NewLimiter(map[time.Duration]int{
			50 * time.Millisecond: 1,
			time.Second:           15,
		}),
	}
}

// Disabled returns a Logger that drops everything; useful as a default
// for constructors that accept a logger option.
func Disabled() *Logger {
	return &Logger{l: izerolog.L.New(izerolog.L.WithLevel(logiface.LevelDisabled))}
}

// Allow reports whether a diagnostic log line for category should be
// emitted right now, per the configured rate windows. Categories are
// typically worker IDs or key names; unrelated categories never
// interfere with each other's budget.
func (t *Logger) Allow(category any) bool {
	if t == nil || t.limiter == nil {
		return true
	}
	_, ok := t.limiter.Allow(category)
	return ok
}

// Info returns a log entry builder at the Informational level, or nil
// if logging at that level is disabled — callers should always check
// the builder for nil before building fields.
func (t *Logger) Info() *logiface.Builder[*izerolog.Event] {
	if t == nil {
		return nil
	}
	return t.l.Info()
}

func (t *Logger) Debug() *logiface.Builder[*izerolog.Event] {
	if t == nil {
		return nil
	}
	return t.l.Debug()
}

func (t *Logger) Warning() *logiface.Builder[*izerolog.Event] {
	if t == nil {
		return nil
	}
	return t.l.Warning()
}

// Emergency logs a fatal/unrecoverable error at the Emergency level.
// Called from this module's fatal() helper just before it panics.
func (t *Logger) Emergency(err error) {
	if t == nil {
		return
	}
	t.l.Emerg().Err(err).Log("fatal coherence error")
}

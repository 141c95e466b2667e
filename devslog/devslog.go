// Package devslog is the structured-logging adapter used by sim; package
// hybrid does not log. It is a thin wrapper over github.com/joeycumines/logiface, backed
// by github.com/joeycumines/stumpy's JSON encoder — the structured-logging
// stack used throughout the rest of the joeycumines-go-utilpkg retrieval
// pack (see e.g. logiface-stumpy/example_test.go), adopted here because
// lvlath itself never logs and so sets no precedent of its own.
//
// Logger is deliberately narrow: sim only ever emits a handful
// of fixed-shape lines (one per completed step, one per reported error),
// so the interface exposes exactly that rather than the full logiface
// builder surface.
package devslog

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logging contract sim.Simulator depends on. A nil Logger is never passed around internally; New/Discard fill the
// gap the way dijkstra.Option substitutes zero-value defaults for options
// the caller left unset.
type Logger interface {
	// Step logs one completed simulation step at debug level.
	Step(t string, imminent, receivers, revisions int)

	// Failure logs one of the §7 error kinds at error level immediately
	// before the call that detected it returns the error to its caller.
	Failure(kind string, err error)
}

// logifaceLogger adapts a *logiface.Logger[*stumpy.Event] to Logger.
type logifaceLogger struct {
	l *logiface.Logger[*stumpy.Event]
}

// New constructs a Logger that writes newline-delimited JSON via stumpy.
// Options configure the underlying stumpy encoder (see stumpy.WithWriter,
// stumpy.WithTimeField); the default level is informational, matching
// stumpy's own default, with debug-level step logging enabled by passing
// logiface.WithLevel(logiface.LevelDebug) through opts.
func New(opts ...stumpy.Option) Logger {
	return &logifaceLogger{
		l: stumpy.L.New(stumpy.L.WithStumpy(opts...)),
	}
}

// Discard returns a Logger that drops everything, for callers that pass no
// explicit logger to NewSimulator.
func Discard() Logger {
	return &logifaceLogger{l: stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))}
}

func (d *logifaceLogger) Step(t string, imminent, receivers, revisions int) {
	d.l.Debug().
		Str(`t`, t).
		Int64(`imminent`, int64(imminent)).
		Int64(`receivers`, int64(receivers)).
		Int64(`mealy_revisions`, int64(revisions)).
		Log(`step`)
}

func (d *logifaceLogger) Failure(kind string, err error) {
	d.l.Err().
		Str(`kind`, kind).
		Err(err).
		Log(`simulation error`)
}

// Package corelog is the structured logging seam every other package
// logs through, so a host application can redirect or silence it
// without the core importing a concrete logging backend by name.
package corelog

import (
	"os"

	kitlog "github.com/go-kit/log"
)

// Logger is the leveled logging capability the session, client, and
// reference hooks use. keyvals follows go-kit/log's alternating
// key/value convention.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// kitLogger adapts a go-kit/log.Logger into Logger, tagging each line
// with its level the way every logger in the corpus does.
type kitLogger struct {
	base kitlog.Logger
}

// New builds a JSON-formatted Logger writing to w, timestamped in
// UTC. Passing nil for w defaults to os.Stderr.
func New(w *os.File) Logger {
	if w == nil {
		w = os.Stderr
	}
	base := kitlog.NewJSONLogger(kitlog.NewSyncWriter(w))
	base = kitlog.With(base, "ts", kitlog.DefaultTimestampUTC)
	return &kitLogger{base: base}
}

func (l *kitLogger) Debug(msg string, keyvals ...any) { l.log("debug", msg, keyvals...) }
func (l *kitLogger) Info(msg string, keyvals ...any)  { l.log("info", msg, keyvals...) }
func (l *kitLogger) Warn(msg string, keyvals ...any)  { l.log("warn", msg, keyvals...) }
func (l *kitLogger) Error(msg string, keyvals ...any) { l.log("error", msg, keyvals...) }

func (l *kitLogger) log(level, msg string, keyvals ...any) {
	args := append([]any{"level", level, "msg", msg}, keyvals...)
	_ = l.base.Log(args...)
}

// Nop is a Logger that discards everything, the default when a host
// doesn't configure one.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

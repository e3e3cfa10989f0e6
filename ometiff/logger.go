package ometiff

// Logger is the minimal injectable logging hook this module uses to
// surface non-fatal recovery decisions (spec.md §4.5 steps 3, 5-9) to a
// caller who wants visibility into them, without imposing a concrete
// logging library dependency on every consumer.
type Logger interface {
	Warnf(format string, args ...any)
}

// noopLogger discards every message; it is the default when no Logger
// option is supplied.
type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}

var defaultLogger Logger = noopLogger{}

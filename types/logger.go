package types

import "log"

// Logger is the ambient logging hook the driver, poll-control coordinator
// and firmware orchestrator constructors accept via a WithLogger
// functional option. Richer diagnostic context (spec.md §7) flows
// through these three levels; public operations still return booleans or
// errors to their caller regardless of what gets logged.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. It is the default for every subsystem
// that does not have a Logger configured.
type NopLogger struct{}

// Debugf implements Logger.
func (NopLogger) Debugf(string, ...any) {}

// Warnf implements Logger.
func (NopLogger) Warnf(string, ...any) {}

// Errorf implements Logger.
func (NopLogger) Errorf(string, ...any) {}

// StdLogger adapts the standard library's *log.Logger to the Logger
// interface, prefixing each line with its level.
type StdLogger struct {
	L *log.Logger
}

// NewStdLogger wraps l as a Logger. A nil l uses log.Default().
func NewStdLogger(l *log.Logger) StdLogger {
	if l == nil {
		l = log.Default()
	}
	return StdLogger{L: l}
}

// Debugf implements Logger.
func (s StdLogger) Debugf(format string, args ...any) {
	s.L.Printf("DEBUG "+format, args...)
}

// Warnf implements Logger.
func (s StdLogger) Warnf(format string, args ...any) {
	s.L.Printf("WARN "+format, args...)
}

// Errorf implements Logger.
func (s StdLogger) Errorf(format string, args ...any) {
	s.L.Printf("ERROR "+format, args...)
}

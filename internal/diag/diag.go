// Package diag is polygen's verbose-trace logging: a thin wrapper over
// fmt.Fprintf writing to an io.Writer (stderr by default), gated by a
// -v/--verbose flag, rather than a structured logging framework. The
// teacher never pulls in a logging library either; cmd/tqi/main.go and
// cmd/tqserver/main.go write diagnostics straight to os.Stderr with
// fmt.Fprintf, and this package keeps that texture instead of introducing
// one.
package diag

import (
	"fmt"
	"io"
	"os"
)

// Logger writes verbose trace lines when Enabled is true; otherwise every
// method is a silent no-op. The zero value writes to os.Stderr with
// tracing disabled.
type Logger struct {
	Out     io.Writer
	Enabled bool
}

// New returns a Logger writing to os.Stderr, enabled iff verbose is true.
func New(verbose bool) *Logger {
	return &Logger{Out: os.Stderr, Enabled: verbose}
}

// Tracef writes a formatted trace line, prefixed "polygen: ", iff tracing
// is enabled.
func (l *Logger) Tracef(format string, args ...any) {
	if l == nil || !l.Enabled {
		return
	}
	out := l.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "polygen: "+format+"\n", args...)
}

// Pass announces the start of a modifier pass, for -v output walking the
// fixpoint driver's progress pass by pass.
func (l *Logger) Pass(name string, iteration int) {
	l.Tracef("pass %s: iteration %d", name, iteration)
}

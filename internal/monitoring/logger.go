// Package monitoring carries the shared diagnostics logger. Components log
// operational messages through Logf so tests and embedding applications can
// redirect or mute them without touching the standard logger. Verbose
// streaming diagnostics go through Debugf, which stays silent unless debug
// output is switched on.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostics logger, defaulting to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// debugEnabled gates Debugf. Off by default so the streaming hot path stays
// quiet; the worker and load/unload paths run at sensor rate.
var debugEnabled atomic.Bool

// SetDebug toggles emission of Debugf diagnostics. Safe to call while
// background workers are logging.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// Debugf emits a verbose diagnostic through Logf when debug output is
// enabled, and is a no-op otherwise.
func Debugf(format string, v ...interface{}) {
	if debugEnabled.Load() {
		Logf(format, v...)
	}
}

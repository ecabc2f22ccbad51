package bayeskit

import (
	"log"
	"sync/atomic"
)

// logging is read by training loops that run in their own goroutines.
var logging atomic.Bool

// SetLog enables or disables the log output of the library.
func SetLog(enable bool) { logging.Store(enable) }

// Logging reports whether log output is enabled.
func Logging() bool { return logging.Load() }

// Log writes a message to the standard logger if logging is enabled.
func Log(format string, args ...interface{}) {
	if !logging.Load() {
		return
	}
	log.Printf(format, args...)
}

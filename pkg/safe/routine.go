// Package safe runs background goroutines that log a panic instead of
// crashing the process.
package safe

import (
	"runtime"

	"go.uber.org/zap"
)

// Go runs fn in a new goroutine.
func Go(fn func()) {
	go func() {
		defer Recover()
		fn()
	}()
}

// Recover logs a recovered panic with its stack. It must be deferred.
func Recover() {
	if err := recover(); err != nil {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		zap.S().Errorf("goroutine panic: %v\n %s", err, buf[:n])
	}
}

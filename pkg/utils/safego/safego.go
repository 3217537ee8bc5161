// Package safego launches goroutines with panic recovery, so a panicking
// stream producer cannot take down the whole process.
package safego

import (
	"context"
	"runtime/debug"

	"github.com/onedragon/odagent/pkg/logger"
)

// Go runs fn in a new goroutine. A panic inside fn is recovered and logged
// with a stack trace instead of crashing the process.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[safego] goroutine panic recovered: %v\n%s", r, debug.Stack())
			}
		}()

		select {
		case <-ctx.Done():
			return
		default:
		}

		fn()
	}()
}

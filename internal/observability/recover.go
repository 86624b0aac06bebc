package observability

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError is returned by Recover when fn panicked.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recover runs fn and turns a panic into a *PanicError so a single bad item
// cannot take the control loop down.
func Recover(ctx context.Context, log *Logger, what string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := compactStack(string(debug.Stack()))
			if log != nil {
				log.Error(ctx, "panic recovered",
					"panic", fmt.Sprintf("%v", rec),
					"what", what,
					"traceback", stack,
				)
			}
			err = &PanicError{Value: rec, Stack: stack}
		}
	}()
	return fn()
}

func compactStack(stack string) string {
	lines := strings.Split(stack, "\n")
	if len(lines) <= 16 {
		return strings.TrimSpace(stack)
	}
	return strings.TrimSpace(strings.Join(lines[:16], "\n"))
}

package logging

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError carries a recovered panic value and the stack at recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recovered wraps a value returned by recover. It returns nil for nil.
func Recovered(v any) *PanicError {
	if v == nil {
		return nil
	}
	return &PanicError{Value: v, Stack: debug.Stack()}
}

// LogPanic logs e at error level with its stack.
func LogPanic(logger *slog.Logger, msg string, e *PanicError) {
	if logger == nil || e == nil {
		return
	}
	logger.Error(msg, "panic", fmt.Sprint(e.Value), "stack", string(e.Stack))
}

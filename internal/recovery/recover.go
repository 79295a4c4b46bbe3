// Package recovery provides panic recovery around caller-supplied callbacks.
// Ensures user-provided translators and change handlers don't crash a query
// or a notification loop.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrPanic is matched by every PanicError.
var ErrPanic = errors.New("panic recovered")

// PanicError carries a recovered panic value.
type PanicError struct {
	Operation string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

func (e *PanicError) Is(target error) bool { return target == ErrPanic }

// RecoverToError wraps a function call with panic recovery.
// If the function panics, converts the panic to a *PanicError.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "Compile", func() error {
//	    pred, err = expr.Compile(e, binding)
//	    return err
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, "Panic recovered", operation, r)
			err = &PanicError{Operation: operation, Value: r}
		}
	}()

	return fn()
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and a *PanicError.
//
// Example:
//
//	e, err := recovery.RecoverToValue(logger, "Translate", func() (expr.Expression, error) {
//	    return registry.Translate(d)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, "Panic recovered", operation, r)

			var zero T
			result = zero
			err = &PanicError{Operation: operation, Value: r}
		}
	}()

	return fn()
}

// Recover wraps a void function with panic recovery.
// Logs the panic but doesn't return an error.
// Use for notification handlers where errors can't be returned.
func Recover(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, "Panic recovered in handler", operation, r)
		}
	}()

	fn()
}

func logPanic(logger *slog.Logger, msg, operation string, r any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg,
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
}

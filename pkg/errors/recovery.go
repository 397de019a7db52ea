package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicError is a recovered panic from model code, typically one fold of a
// cross-validation run. Operation names the fold or call that panicked.
type PanicError struct {
	Operation  string
	PanicValue any
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the goroutine stack captured at recovery.
func (e *PanicError) String() string {
	return e.Error() + "\nStack trace:\n" + e.StackTrace
}

// Unwrap exposes panic values that are themselves errors, such as runtime.Error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *PanicError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "PanicError").
		Str("operation", e.Operation).
		Str("panic", fmt.Sprint(e.PanicValue))
}

// NewPanicError wraps a recovered panic value, capturing the current
// goroutine stack.
func NewPanicError(operation string, value any) *PanicError {
	return &PanicError{Operation: operation, PanicValue: value, StackTrace: string(debug.Stack())}
}

// Recover turns a panic into an error on the named return of the deferring
// function:
//
//	func fitFold(...) (err error) {
//		defer errors.Recover(&err, "fold 2")
//		...
//	}
//
// An error that was already set stays in the chain.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = NewPanicError(operation, r)
}

// SafeExecute runs fn, returning its error or the recovered panic.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}

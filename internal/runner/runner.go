// Package runner executes a unit of network work off the caller's
// context and delivers its result or error back on that context.
package runner

import "errors"

// ErrNoResult is surfaced when a unit of work returns neither a value
// nor an error. It indicates a contract violation elsewhere, not a
// normal runtime condition.
var ErrNoResult = errors.New("the operation returned neither a result nor an error")

// Dispatcher posts a function onto an execution context. Callbacks
// submitted through a runner always land on the dispatcher the caller
// provided.
type Dispatcher interface {
	Dispatch(fn func())
}

// Callback receives exactly one terminal notification per submitted
// unit of work.
type Callback[T any] interface {
	OnSuccess(result *T)
	OnError(err error)
}

// Execute runs work on its own goroutine and delivers either the
// produced value or the error to cb via d. Exactly one of
// OnSuccess/OnError fires; a nil result with a nil error is reported as
// ErrNoResult.
func Execute[T any](d Dispatcher, work func() (*T, error), cb Callback[T]) {
	go func() {
		result, err := work()
		d.Dispatch(func() {
			switch {
			case err != nil:
				cb.OnError(err)
			case result != nil:
				cb.OnSuccess(result)
			default:
				cb.OnError(ErrNoResult)
			}
		})
	}()
}

// Funcs adapts two functions into a Callback.
type Funcs[T any] struct {
	Success func(result *T)
	Error   func(err error)
}

func (f Funcs[T]) OnSuccess(result *T) { f.Success(result) }
func (f Funcs[T]) OnError(err error)   { f.Error(err) }

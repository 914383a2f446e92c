package bridge

import (
	"context"
	"errors"

	"github.com/rpggio/dynamic-activities/internal/apperror"
)

// Result is the outcome of one lifecycle operation: exactly one of Value or
// Err is meaningful.
type Result[T any] struct {
	Value T
	Err   *apperror.Error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](err *apperror.Error) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Unpack returns the value and a nil error, or the zero value and the
// failure as a plain error.
func (r Result[T]) Unpack() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}

// resultOf folds a service return pair into a Result. Services only return
// *apperror.Error; anything else is an unexpected failure.
func resultOf[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return Fail[T](appErr)
	}
	return Fail[T](apperror.System(apperror.CodeUnknownError,
		apperror.WithFailureReason(err.Error()),
		apperror.WithCause(err)))
}

// Completion delivers a single Result. It is written once and then closed.
type Completion[T any] <-chan Result[T]

// Await blocks until the operation completes or ctx is done. Giving up on
// the wait does not cancel the operation.
func Await[T any](ctx context.Context, c Completion[T]) Result[T] {
	select {
	case r, ok := <-c:
		if !ok {
			return Fail[T](apperror.System(apperror.CodeUnknownError,
				apperror.WithFailureReason("completion already consumed")))
		}
		return r
	case <-ctx.Done():
		return Fail[T](apperror.System(apperror.CodeUnknownError,
			apperror.WithMessage("The operation is still in flight; its outcome was not awaited."),
			apperror.WithCause(ctx.Err())))
	}
}

// Package bridge adapts the lifecycle service to calling runtimes. It decodes
// and validates runtime payloads, runs each operation off the caller's
// goroutine and reports the outcome through a single-fire completion.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rpggio/dynamic-activities/internal/apperror"
	"github.com/rpggio/dynamic-activities/internal/domain/activity"
	"github.com/rpggio/dynamic-activities/internal/domain/journal"
)

// Method names accepted by Handle.
const (
	MethodAreSupported    = "areSupported"
	MethodStart           = "start"
	MethodUpdate          = "update"
	MethodEnd             = "end"
	MethodLifecycleEvents = "lifecycleEvents"
)

// Lifecycle is the service the bridge drives.
type Lifecycle interface {
	Supported() activity.Support
	Start(ctx context.Context, req activity.StartRequest) (*activity.StartResult, error)
	Update(ctx context.Context, req activity.UpdateRequest) error
	End(ctx context.Context, req activity.EndRequest) error
}

// EventReader reads the lifecycle journal.
type EventReader interface {
	RecentEvents(ctx context.Context, opts journal.ListOptions) ([]journal.Event, error)
}

// Empty is the success value of operations that return nothing.
type Empty struct{}

// Bridge is the caller-facing surface.
type Bridge struct {
	lifecycle Lifecycle
	events    EventReader
	validate  *validator.Validate
	logger    *slog.Logger
	inflight  sync.WaitGroup
}

// New creates a bridge over lifecycle. events may be nil, in which case
// lifecycleEvents returns an empty list.
func New(lifecycle Lifecycle, events EventReader, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Bridge{
		lifecycle: lifecycle,
		events:    events,
		validate:  validate,
		logger:    logger,
	}
}

// AreSupported is the synchronous capability probe. It never fails.
func (b *Bridge) AreSupported() activity.Support {
	return b.lifecycle.Supported()
}

// Start dispatches a start operation.
func (b *Bridge) Start(ctx context.Context, p StartPayload) Completion[activity.StartResult] {
	req := p.request()
	return dispatch(b, ctx, MethodStart, func(ctx context.Context) (activity.StartResult, error) {
		res, err := b.lifecycle.Start(ctx, req)
		if err != nil {
			return activity.StartResult{}, err
		}
		return *res, nil
	})
}

// Update dispatches an update operation. The completion fires after the
// platform call has returned.
func (b *Bridge) Update(ctx context.Context, p UpdatePayload) Completion[Empty] {
	req := p.request()
	return dispatch(b, ctx, MethodUpdate, func(ctx context.Context) (Empty, error) {
		return Empty{}, b.lifecycle.Update(ctx, req)
	})
}

// End dispatches an end operation.
func (b *Bridge) End(ctx context.Context, p EndPayload) Completion[Empty] {
	req := p.request()
	return dispatch(b, ctx, MethodEnd, func(ctx context.Context) (Empty, error) {
		return Empty{}, b.lifecycle.End(ctx, req)
	})
}

// Wait blocks until every dispatched operation has delivered its result.
func (b *Bridge) Wait() {
	b.inflight.Wait()
}

// dispatch runs fn on its own goroutine. The operation is detached from ctx
// cancellation; it always runs to completion and fires exactly once.
func dispatch[T any](b *Bridge, ctx context.Context, method string, fn func(context.Context) (T, error)) Completion[T] {
	ch := make(chan Result[T], 1)
	callID := uuid.NewString()
	opCtx := context.WithoutCancel(ctx)

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("lifecycle operation panicked", "method", method, "call_id", callID, "panic", r)
				ch <- Fail[T](apperror.System(apperror.CodeUnknownError,
					apperror.WithFailureReason(fmt.Sprint(r))))
			}
		}()

		b.logger.Debug("lifecycle operation dispatched", "method", method, "call_id", callID)
		v, err := fn(opCtx)
		ch <- resultOf(v, err)
	}()
	return ch
}

// Handle decodes params for method, runs it and waits for the result. It
// returns a *ParamsError for bad payloads, ErrUnknownMethod for unknown
// methods and an *apperror.Error for lifecycle failures.
func (b *Bridge) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodAreSupported:
		return b.AreSupported(), nil
	case MethodStart:
		var p StartPayload
		if err := b.decode(method, params, &p); err != nil {
			return nil, err
		}
		return Await(ctx, b.Start(ctx, p)).Unpack()
	case MethodUpdate:
		var p UpdatePayload
		if err := b.decode(method, params, &p); err != nil {
			return nil, err
		}
		return Await(ctx, b.Update(ctx, p)).Unpack()
	case MethodEnd:
		var p EndPayload
		if err := b.decode(method, params, &p); err != nil {
			return nil, err
		}
		return Await(ctx, b.End(ctx, p)).Unpack()
	case MethodLifecycleEvents:
		var p EventsPayload
		if err := b.decode(method, params, &p); err != nil {
			return nil, err
		}
		return b.LifecycleEvents(ctx, p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// LifecycleEvents reads the journal, newest first.
func (b *Bridge) LifecycleEvents(ctx context.Context, p EventsPayload) ([]journal.Event, error) {
	if b.events == nil {
		return []journal.Event{}, nil
	}
	events, err := b.events.RecentEvents(ctx, p.options())
	if err != nil {
		return nil, fmt.Errorf("read lifecycle events: %w", err)
	}
	if events == nil {
		events = []journal.Event{}
	}
	return events, nil
}

// Validate checks a decoded payload against its constraints.
func (b *Bridge) Validate(method string, payload any) error {
	if err := b.validate.Struct(payload); err != nil {
		return &ParamsError{Method: method, Err: describeValidation(err)}
	}
	return nil
}

func (b *Bridge) decode(method string, params json.RawMessage, out any) error {
	if len(params) > 0 && string(params) != "null" {
		dec := json.NewDecoder(bytes.NewReader(params))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return &ParamsError{Method: method, Err: err}
		}
	}
	return b.Validate(method, out)
}

// IsParamsError reports whether err is a payload error.
func IsParamsError(err error) bool {
	var pe *ParamsError
	return errors.As(err, &pe)
}

// Package apperror defines the closed error taxonomy returned by every
// lifecycle operation and the mapping from native platform failures into it.
package apperror

import (
	"fmt"
	"time"
)

// Code is a member of the closed error code set.
type Code string

const (
	CodeAttributesTooLarge          Code = "attributesTooLarge"
	CodeDenied                      Code = "denied"
	CodeGlobalMaximumExceeded       Code = "globalMaximumExceeded"
	CodeTargetMaximumExceeded       Code = "targetMaximumExceeded"
	CodeMalformedActivityIdentifier Code = "malformedActivityIdentifier"
	CodeMissingProcessIdentifier    Code = "missingProcessIdentifier"
	CodePersistenceFailure          Code = "persistenceFailure"
	CodeReconnectNotPermitted       Code = "reconnectNotPermitted"
	CodeUnentitled                  Code = "unentitled"
	CodeUnsupported                 Code = "unsupported"
	CodeUnsupportedTarget           Code = "unsupportedTarget"
	CodeVisibility                  Code = "visibility"
	CodeNetworkError                Code = "networkError"
	CodeUnknownError                Code = "unknownError"

	// CodeNotFound is raised by the lifecycle service itself when an id has
	// no live registry entry. It never comes from the platform.
	CodeNotFound Code = "notFound"
)

// Category partitions codes by how a caller recovers.
type Category string

const (
	CategoryAuthorization Category = "authorization"
	CategorySystem        Category = "system"
)

// Severity hints how loudly a caller should surface the error.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Error is the single outward error type of the lifecycle API.
type Error struct {
	Code               Code      `json:"code"`
	Category           Category  `json:"category"`
	Severity           Severity  `json:"severity"`
	Message            string    `json:"message"`
	FailureReason      string    `json:"failureReason,omitempty"`
	RecoverySuggestion string    `json:"recoverySuggestion"`
	ActivityID         string    `json:"activityId,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	NativeCode         int       `json:"nativeErrorCode,omitempty"`
	NativeDomain       string    `json:"nativeErrorDomain,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// FromPlatform reports whether the error was derived from a native failure or
// precondition, as opposed to the service-local not-found condition.
func (e *Error) FromPlatform() bool {
	return e.Code != CodeNotFound
}

// Option customizes a constructed error.
type Option func(*Error)

// WithMessage overrides the default message.
func WithMessage(msg string) Option {
	return func(e *Error) {
		if msg != "" {
			e.Message = msg
		}
	}
}

// WithActivityID attaches the activity the failure concerns.
func WithActivityID(id string) Option {
	return func(e *Error) { e.ActivityID = id }
}

// WithFailureReason attaches a diagnostic reason.
func WithFailureReason(reason string) Option {
	return func(e *Error) { e.FailureReason = reason }
}

// WithCause records the underlying error for errors.Is/As.
func WithCause(err error) Option {
	return func(e *Error) { e.cause = err }
}

// WithNative records native code and domain for diagnostics.
func WithNative(code int, domain string) Option {
	return func(e *Error) {
		e.NativeCode = code
		e.NativeDomain = domain
	}
}

// WithTimestamp pins the timestamp, mostly for tests.
func WithTimestamp(ts time.Time) Option {
	return func(e *Error) { e.Timestamp = ts }
}

// Authorization builds an error in the authorization category.
func Authorization(code Code, opts ...Option) *Error {
	return build(code, CategoryAuthorization, opts)
}

// System builds an error in the system category.
func System(code Code, opts ...Option) *Error {
	return build(code, CategorySystem, opts)
}

// NotFound builds the service-local not-found error for id.
func NotFound(id string, cause error, opts ...Option) *Error {
	return System(CodeNotFound, append([]Option{
		WithActivityID(id),
		WithCause(cause),
		WithFailureReason(fmt.Sprintf("no live activity registered under %q", id)),
	}, opts...)...)
}

func build(code Code, category Category, opts []Option) *Error {
	d, ok := descriptors[code]
	if !ok {
		d = descriptors[CodeUnknownError]
		code = CodeUnknownError
	}
	e := &Error{
		Code:               code,
		Category:           category,
		Severity:           d.severity,
		Message:            d.message,
		RecoverySuggestion: d.recovery,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return e
}

package apperror

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rpggio/dynamic-activities/internal/platform"
)

var authorizationCodes = map[platform.AuthorizationError]Code{
	platform.AuthAttributesTooLarge:          CodeAttributesTooLarge,
	platform.AuthDenied:                      CodeDenied,
	platform.AuthGlobalMaximumExceeded:       CodeGlobalMaximumExceeded,
	platform.AuthMalformedActivityIdentifier: CodeMalformedActivityIdentifier,
	platform.AuthMissingProcessIdentifier:    CodeMissingProcessIdentifier,
	platform.AuthPersistenceFailure:          CodePersistenceFailure,
	platform.AuthReconnectNotPermitted:       CodeReconnectNotPermitted,
	platform.AuthTargetMaximumExceeded:       CodeTargetMaximumExceeded,
	platform.AuthUnentitled:                  CodeUnentitled,
	platform.AuthUnsupported:                 CodeUnsupported,
	platform.AuthUnsupportedTarget:           CodeUnsupportedTarget,
	platform.AuthVisibility:                  CodeVisibility,
}

// Map converts a native failure into an Error. info qualifies messages for
// failures the platform did not describe itself. Map never returns nil for a
// non-nil err; an existing *Error is returned unchanged.
func Map(err error, info platform.Info, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var authErr platform.AuthorizationError
	if errors.As(err, &authErr) {
		code, ok := authorizationCodes[authErr]
		if !ok {
			return System(CodeUnknownError, append([]Option{
				WithMessage(fmt.Sprintf("An unknown authorization error (%d) occurred on %s %s.", int(authErr), info.OS.DisplayName(), info.Version)),
				WithNative(authErr.Code(), platform.ErrorDomain),
				WithCause(err),
			}, opts...)...)
		}
		return Authorization(code, append([]Option{
			WithMessage(authErr.Error()),
			WithNative(authErr.Code(), platform.ErrorDomain),
			WithCause(err),
		}, opts...)...)
	}

	var unavailable *platform.UnavailableError
	if errors.As(err, &unavailable) {
		return System(CodeUnsupported, append([]Option{
			WithMessage(UnsupportedVersionMessage(info.OS, unavailable.Running, unavailable.Required)),
			WithFailureReason(err.Error()),
			WithCause(err),
		}, opts...)...)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return System(CodeNetworkError, append([]Option{
			WithFailureReason(err.Error()),
			WithCause(err),
		}, opts...)...)
	}

	msg := fmt.Sprintf("An unknown error occurred on %s %s.", info.OS.DisplayName(), info.Version)
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("The platform did not respond in time on %s %s.", info.OS.DisplayName(), info.Version)
	}
	return System(CodeUnknownError, append([]Option{
		WithMessage(msg),
		WithFailureReason(err.Error()),
		WithCause(err),
	}, opts...)...)
}

// UnsupportedVersionMessage is the version-qualified unsupported message.
func UnsupportedVersionMessage(os platform.OS, running, required platform.Version) string {
	return fmt.Sprintf("Live Activities require %s %s or later; this device runs %s %s.",
		os.DisplayName(), required, os.DisplayName(), running)
}

// UnsupportedPlatform is the fixed error for OS families without live activities.
func UnsupportedPlatform(os platform.OS, opts ...Option) *Error {
	return System(CodeUnsupported, append([]Option{
		WithMessage("Live Activities are not supported on this platform."),
		WithFailureReason(fmt.Sprintf("%s has no live activity support", os.DisplayName())),
	}, opts...)...)
}

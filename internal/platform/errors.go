package platform

import "fmt"

// AuthorizationError is the native authorization failure enumeration.
type AuthorizationError int

const (
	AuthAttributesTooLarge AuthorizationError = iota + 1
	AuthDenied
	AuthGlobalMaximumExceeded
	AuthMalformedActivityIdentifier
	AuthMissingProcessIdentifier
	AuthPersistenceFailure
	AuthReconnectNotPermitted
	AuthTargetMaximumExceeded
	AuthUnentitled
	AuthUnsupported
	AuthUnsupportedTarget
	AuthVisibility
)

// ErrorDomain is the native error domain reported alongside codes.
const ErrorDomain = "ActivityKit.ActivityAuthorizationError"

var authorizationDescriptions = map[AuthorizationError]string{
	AuthAttributesTooLarge:          "The provided Live Activity attributes exceeded the maximum size of 4KB.",
	AuthDenied:                      "A person deactivated Live Activities in Settings.",
	AuthGlobalMaximumExceeded:       "The device reached the maximum number of ongoing Live Activities.",
	AuthMalformedActivityIdentifier: "The provided activity identifier is malformed.",
	AuthMissingProcessIdentifier:    "The process that tried to start the Live Activity is missing a process identifier.",
	AuthPersistenceFailure:          "The system couldn't persist the Live Activity.",
	AuthReconnectNotPermitted:       "The process that tried to recreate the Live Activity is not the process that originally created the Live Activity.",
	AuthTargetMaximumExceeded:       "The app has already started the maximum number of concurrent Live Activities.",
	AuthUnentitled:                  "The app doesn't have the required entitlement to start a Live Activity.",
	AuthUnsupported:                 "The device doesn't support Live Activities.",
	AuthUnsupportedTarget:           "The app doesn't have the required entitlement to start a Live Activities.",
	AuthVisibility:                  "The app tried to start the Live Activity while it was in the background.",
}

func (e AuthorizationError) Error() string {
	if d, ok := authorizationDescriptions[e]; ok {
		return d
	}
	return fmt.Sprintf("unknown authorization error %d", int(e))
}

// Code is the native numeric code.
func (e AuthorizationError) Code() int {
	return int(e)
}

// UnavailableError is raised when an API is invoked on a version below the
// one that introduced it. It is synthetic: the native framework would crash.
type UnavailableError struct {
	Running  Version
	Required Version
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("unavailable on %s, requires %s", e.Running, e.Required)
}

package apperror

type descriptor struct {
	message  string
	recovery string
	severity Severity
}

// descriptors holds the fixed default text per code. Authorization messages
// match the platform's own descriptions.
var descriptors = map[Code]descriptor{
	CodeAttributesTooLarge: {
		message:  "The provided Live Activity attributes exceeded the maximum size of 4KB.",
		recovery: "Reduce the size of the activity attributes and try again.",
		severity: SeverityError,
	},
	CodeDenied: {
		message:  "A person deactivated Live Activities in Settings.",
		recovery: "Ask the user to enable Live Activities for this app in Settings.",
		severity: SeverityWarning,
	},
	CodeGlobalMaximumExceeded: {
		message:  "The device reached the maximum number of ongoing Live Activities.",
		recovery: "Wait for other Live Activities to end before starting a new one.",
		severity: SeverityWarning,
	},
	CodeTargetMaximumExceeded: {
		message:  "The app has already started the maximum number of concurrent Live Activities.",
		recovery: "End one of this app's running Live Activities before starting a new one.",
		severity: SeverityWarning,
	},
	CodeMalformedActivityIdentifier: {
		message:  "The provided activity identifier is malformed.",
		recovery: "Use the activity identifier returned by start.",
		severity: SeverityError,
	},
	CodeMissingProcessIdentifier: {
		message:  "The process that tried to start the Live Activity is missing a process identifier.",
		recovery: "Start the Live Activity from the app's main process.",
		severity: SeverityError,
	},
	CodePersistenceFailure: {
		message:  "The system couldn't persist the Live Activity.",
		recovery: "Try again later; the device may be low on storage.",
		severity: SeverityError,
	},
	CodeReconnectNotPermitted: {
		message:  "The process that tried to recreate the Live Activity is not the process that originally created the Live Activity.",
		recovery: "Manage the Live Activity from the process that started it.",
		severity: SeverityError,
	},
	CodeUnentitled: {
		message:  "The app doesn't have the required entitlement to start a Live Activity.",
		recovery: "Add NSSupportsLiveActivities to the app's Info.plist.",
		severity: SeverityCritical,
	},
	CodeUnsupported: {
		message:  "The device doesn't support Live Activities.",
		recovery: "Check areSupported() before starting a Live Activity.",
		severity: SeverityWarning,
	},
	CodeUnsupportedTarget: {
		message:  "The app doesn't have the required entitlement to start a Live Activities.",
		recovery: "Enable the Live Activities capability for the app target.",
		severity: SeverityCritical,
	},
	CodeVisibility: {
		message:  "The app tried to start the Live Activity while it was in the background.",
		recovery: "Start the Live Activity while the app is in the foreground.",
		severity: SeverityWarning,
	},
	CodeNetworkError: {
		message:  "A network error occurred while communicating with the push service.",
		recovery: "Check the network connection and retry.",
		severity: SeverityError,
	},
	CodeUnknownError: {
		message:  "An unknown error occurred.",
		recovery: "Retry the operation; report the issue if it persists.",
		severity: SeverityError,
	},
	CodeNotFound: {
		message:  "No Live Activity with the given identifier is running.",
		recovery: "The activity may already have ended; start a new one.",
		severity: SeverityWarning,
	},
}

// Codes lists the closed code set, not-found included.
func Codes() []Code {
	return []Code{
		CodeAttributesTooLarge, CodeDenied, CodeGlobalMaximumExceeded,
		CodeTargetMaximumExceeded, CodeMalformedActivityIdentifier,
		CodeMissingProcessIdentifier, CodePersistenceFailure,
		CodeReconnectNotPermitted, CodeUnentitled, CodeUnsupported,
		CodeUnsupportedTarget, CodeVisibility, CodeNetworkError,
		CodeUnknownError, CodeNotFound,
	}
}

// RecoverySuggestion returns the fixed recovery text for code.
func RecoverySuggestion(code Code) string {
	return descriptors[code].recovery
}

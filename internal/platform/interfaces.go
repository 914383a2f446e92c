package platform

import "context"

// Handle is the live, platform-owned reference to a running activity.
type Handle interface {
	ID() string
	// PushToken returns the raw push token, or nil when none was issued.
	PushToken() []byte
}

// API is the native activity framework. Calls may block; callers run them off
// the scheduling goroutine.
type API interface {
	Info() Info
	// ActivitiesEnabled reports the current user authorization.
	ActivitiesEnabled() bool
	Request(ctx context.Context, params RequestParams) (Handle, error)
	Update(ctx context.Context, h Handle, params UpdateParams) error
	End(ctx context.Context, h Handle, params EndParams) error
}

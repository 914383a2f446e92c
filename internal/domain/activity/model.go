package activity

import "time"

// State is the displayed state carried by a content snapshot.
type State string

const (
	StateActive    State = "active"
	StatePending   State = "pending"
	StateStale     State = "stale"
	StateDismissed State = "dismissed"
	StateEnded     State = "ended"
)

// Attributes is the immutable metadata fixed when an activity starts.
type Attributes struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Content is the mutable snapshot supplied on every lifecycle call.
type Content struct {
	State State `json:"state"`
	// RelevanceScore is a 0..1 priority hint for the compact display.
	RelevanceScore *float64   `json:"relevanceScore,omitempty"`
	StaleDate      *time.Time `json:"staleDate,omitempty"`
}

// PushToken asks for remote updates. Channel selects broadcast delivery.
type PushToken struct {
	Token   string `json:"token,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// AlertConfiguration is a one-shot alert attached to a transition.
type AlertConfiguration struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

// Style is the presentation style requested at start.
type Style string

const (
	StyleStandard  Style = "standard"
	StyleTransient Style = "transient"
)

// DismissalKind tags a DismissalPolicy.
type DismissalKind string

const (
	DismissDefault   DismissalKind = "default"
	DismissImmediate DismissalKind = "immediate"
	DismissAfter     DismissalKind = "after"
)

// DismissalPolicy governs how long an ended activity stays visible. The
// platform clamps After to four hours past the end call.
type DismissalPolicy struct {
	Kind DismissalKind `json:"kind"`
	Date *time.Time    `json:"date,omitempty"`
}

// After builds an After policy.
func After(t time.Time) DismissalPolicy {
	return DismissalPolicy{Kind: DismissAfter, Date: &t}
}

// StartRequest starts an activity. Optional fields the running platform does
// not support are dropped before the platform call.
type StartRequest struct {
	Attributes Attributes
	Content    Content
	PushToken  *PushToken
	Style      *Style
	Alert      *AlertConfiguration
	StartDate  *time.Time
}

// StartResult identifies the started activity.
type StartResult struct {
	ActivityID string `json:"activityId"`
	// PushToken is hex encoded; empty when the platform issued none.
	PushToken string `json:"pushToken,omitempty"`
}

// UpdateRequest updates a live activity.
type UpdateRequest struct {
	ActivityID string
	Content    Content
	Alert      *AlertConfiguration
	Timestamp  *time.Time
}

// EndRequest ends a live activity. The final state is always ended.
type EndRequest struct {
	ActivityID string
	Content    Content
	Dismissal  *DismissalPolicy
	Timestamp  *time.Time
}

// Support answers the capability probe.
type Support struct {
	Supported       bool     `json:"supported"`
	PlatformVersion float64  `json:"platformVersion"`
	Comment         string   `json:"comment"`
	Parameters      []string `json:"parameters,omitempty"`
}

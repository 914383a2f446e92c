package platform

import "time"

// OS identifies the operating system family a process runs on.
type OS string

const (
	OSiOS     OS = "ios"
	OSAndroid OS = "android"
)

// Capable reports whether the OS family has live activities at all.
func (o OS) Capable() bool {
	return o == OSiOS
}

// DisplayName is the marketing name used in user-facing messages.
func (o OS) DisplayName() string {
	switch o {
	case OSiOS:
		return "iOS"
	case OSAndroid:
		return "Android"
	default:
		return string(o)
	}
}

// Info describes the running platform. Read at call time, never cached.
type Info struct {
	OS      OS
	Version Version
}

// ContentState is the native activity state.
type ContentState string

const (
	StateActive    ContentState = "active"
	StatePending   ContentState = "pending"
	StateStale     ContentState = "stale"
	StateDismissed ContentState = "dismissed"
	StateEnded     ContentState = "ended"
)

// Attributes is the static payload fixed at request time.
type Attributes struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Content is the native content snapshot submitted on every lifecycle call.
type Content struct {
	State          ContentState
	RelevanceScore float64
	StaleDate      *time.Time
	Timestamp      time.Time
}

// AlertConfiguration is a one-shot alert attached to a transition.
type AlertConfiguration struct {
	Title string
	Body  string
	Sound string
}

// Style is the presentation style requested at start.
type Style string

const (
	StyleStandard  Style = "standard"
	StyleTransient Style = "transient"
)

// PushType selects remote update delivery. A nil *PushType means no push.
type PushType struct {
	// Channel is empty for token-based push.
	Channel string
}

// DismissalKind is the native dismissal enumeration.
type DismissalKind int

const (
	DismissDefault DismissalKind = iota
	DismissImmediate
	DismissAfter
)

func (k DismissalKind) String() string {
	switch k {
	case DismissImmediate:
		return "immediate"
	case DismissAfter:
		return "after"
	default:
		return "default"
	}
}

// DismissalPolicy is the native dismissal policy. Date is only read for DismissAfter.
type DismissalPolicy struct {
	Kind DismissalKind
	Date time.Time
}

// RequestParams carries everything a create call may submit. Optional fields
// are nil when the current capability tier does not allow them.
type RequestParams struct {
	Attributes Attributes
	Content    Content
	PushType   *PushType
	Style      *Style
	Alert      *AlertConfiguration
	StartDate  *time.Time
}

// UpdateParams carries an update call.
type UpdateParams struct {
	Content Content
	Alert   *AlertConfiguration
}

// EndParams carries an end call.
type EndParams struct {
	Content   Content
	Dismissal DismissalPolicy
}

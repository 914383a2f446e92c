package journal

import "time"

// EventType classifies a lifecycle journal entry.
type EventType string

const (
	TypeStarted EventType = "started"
	TypeUpdated EventType = "updated"
	TypeEnded   EventType = "ended"
	TypeFailed  EventType = "failed"
)

// Event is one lifecycle outcome recorded in the journal.
type Event struct {
	ID         int64     `json:"id"`
	ActivityID string    `json:"activityId,omitempty"`
	Operation  string    `json:"operation"`
	EventType  EventType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Summary    string    `json:"summary"`
	Details    string    `json:"details,omitempty"` // JSON string
	CreatedAt  time.Time `json:"createdAt"`
}

package journal

// ListOptions provides filtering options for listing events.
type ListOptions struct {
	ActivityID *string
	EventType  *EventType
	Limit      int
	Offset     int
}

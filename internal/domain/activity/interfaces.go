package activity

import (
	"context"
	"time"

	"github.com/rpggio/dynamic-activities/internal/domain/journal"
)

// Journal records lifecycle outcomes.
type Journal interface {
	LogEvent(ctx context.Context, event *journal.Event) error
}

// Observer receives operation metrics.
type Observer interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	SetLive(n int)
}

package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultLimit caps listings that do not ask for a limit.
const DefaultLimit = 100

// Service handles journal operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new journal service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// LogEvent records an event with the current timestamp if missing.
func (s *Service) LogEvent(ctx context.Context, event *Event) error {
	if event == nil || event.Operation == "" || event.EventType == "" {
		return ErrInvalidInput
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, event); err != nil {
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// RecentEvents lists events newest first.
func (s *Service) RecentEvents(ctx context.Context, opts ListOptions) ([]Event, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return s.repo.List(ctx, opts)
}

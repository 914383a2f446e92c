package mocks

import (
	"context"

	"github.com/rpggio/dynamic-activities/internal/domain/journal"
	"github.com/stretchr/testify/mock"
)

// JournalRepository is a mock for journal.Repository.
type JournalRepository struct {
	mock.Mock
}

func (m *JournalRepository) Log(ctx context.Context, event *journal.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *JournalRepository) List(ctx context.Context, opts journal.ListOptions) ([]journal.Event, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]journal.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

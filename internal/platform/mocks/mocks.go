package mocks

import (
	"context"

	"github.com/rpggio/dynamic-activities/internal/platform"
	"github.com/stretchr/testify/mock"
)

// API is a mock for platform.API.
type API struct {
	mock.Mock
}

func (m *API) Info() platform.Info {
	args := m.Called()
	return args.Get(0).(platform.Info)
}

func (m *API) ActivitiesEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *API) Request(ctx context.Context, params platform.RequestParams) (platform.Handle, error) {
	args := m.Called(ctx, params)
	if h, ok := args.Get(0).(platform.Handle); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *API) Update(ctx context.Context, h platform.Handle, params platform.UpdateParams) error {
	args := m.Called(ctx, h, params)
	return args.Error(0)
}

func (m *API) End(ctx context.Context, h platform.Handle, params platform.EndParams) error {
	args := m.Called(ctx, h, params)
	return args.Error(0)
}

// Handle is a fixed platform.Handle.
type Handle struct {
	IDValue    string
	TokenValue []byte
}

func (h *Handle) ID() string        { return h.IDValue }
func (h *Handle) PushToken() []byte { return h.TokenValue }

package bridge

import (
	"context"

	"github.com/rpggio/dynamic-activities/internal/apperror"
	"github.com/rpggio/dynamic-activities/internal/domain/activity"
	"github.com/rpggio/dynamic-activities/internal/platform"
)

// Unsupported is the Lifecycle used where the platform has no live activity
// framework at all. Every operation fails immediately.
type Unsupported struct {
	Info platform.Info
}

func (u Unsupported) Supported() activity.Support {
	return activity.Support{
		PlatformVersion: u.Info.Version.Number(),
		Comment:         "Live Activities are not supported on this platform.",
	}
}

func (u Unsupported) Start(context.Context, activity.StartRequest) (*activity.StartResult, error) {
	return nil, apperror.UnsupportedPlatform(u.Info.OS)
}

func (u Unsupported) Update(context.Context, activity.UpdateRequest) error {
	return apperror.UnsupportedPlatform(u.Info.OS)
}

func (u Unsupported) End(context.Context, activity.EndRequest) error {
	return apperror.UnsupportedPlatform(u.Info.OS)
}

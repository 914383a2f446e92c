package simulator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/dynamic-activities/internal/platform"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func request(t *testing.T, sim *Simulator) platform.Handle {
	t.Helper()
	h, err := sim.Request(context.Background(), platform.RequestParams{
		Attributes: platform.Attributes{Title: "Order", Body: "On its way"},
		Content:    platform.Content{State: platform.StateActive, RelevanceScore: 1},
	})
	require.NoError(t, err)
	return h
}

func TestRequest_IssuesIDAndToken(t *testing.T) {
	sim := New(DefaultConfig())
	h, err := sim.Request(context.Background(), platform.RequestParams{
		Attributes: platform.Attributes{Title: "t"},
		Content:    platform.Content{State: platform.StateActive},
		PushType:   &platform.PushType{},
	})
	require.NoError(t, err)
	require.NotEmpty(t, h.ID())
	require.Len(t, h.PushToken(), pushTokenBytes)

	snap, ok := sim.Snapshot(h.ID())
	require.True(t, ok)
	require.Equal(t, "t", snap.Attributes.Title)
	require.Equal(t, 1, sim.LiveCount())
}

func TestRequest_AuthorizationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"denied", func(c *Config) { c.ActivitiesEnabled = false }, platform.AuthDenied},
		{"unentitled", func(c *Config) { c.Entitled = false }, platform.AuthUnentitled},
		{"background", func(c *Config) { c.Foreground = false }, platform.AuthVisibility},
		{"android", func(c *Config) { c.OS = platform.OSAndroid }, platform.AuthUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := New(cfg).Request(context.Background(), platform.RequestParams{})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRequest_BelowFloorIsUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = platform.Version{Major: 15}
	_, err := New(cfg).Request(context.Background(), platform.RequestParams{})
	var unavailable *platform.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, platform.Version{Major: 16, Minor: 1}, unavailable.Required)
}

func TestRequest_RejectsParamsAboveVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = platform.Version{Major: 16, Minor: 4}
	sim := New(cfg)
	style := platform.StyleTransient

	_, err := sim.Request(context.Background(), platform.RequestParams{Style: &style})
	var unavailable *platform.UnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, err = sim.Request(context.Background(), platform.RequestParams{Alert: &platform.AlertConfiguration{Title: "x"}})
	require.ErrorAs(t, err, &unavailable)

	_, err = sim.Request(context.Background(), platform.RequestParams{Content: platform.Content{State: platform.StatePending}})
	require.ErrorAs(t, err, &unavailable)
}

func TestRequest_AttributesTooLarge(t *testing.T) {
	sim := New(DefaultConfig())
	_, err := sim.Request(context.Background(), platform.RequestParams{
		Attributes: platform.Attributes{Title: strings.Repeat("x", MaxAttributesBytes)},
	})
	require.ErrorIs(t, err, platform.AuthAttributesTooLarge)
}

func TestRequest_Ceilings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPerApp = 2
	sim := New(cfg)
	h := request(t, sim)
	request(t, sim)

	_, err := sim.Request(context.Background(), platform.RequestParams{})
	require.ErrorIs(t, err, platform.AuthTargetMaximumExceeded)

	require.NoError(t, sim.End(context.Background(), h, platform.EndParams{}))
	request(t, sim)

	cfg = DefaultConfig()
	cfg.MaxGlobal = 3
	cfg.OtherActivities = 3
	_, err = New(cfg).Request(context.Background(), platform.RequestParams{})
	require.ErrorIs(t, err, platform.AuthGlobalMaximumExceeded)
}

func TestUpdate(t *testing.T) {
	sim := New(DefaultConfig())
	h := request(t, sim)

	alert := &platform.AlertConfiguration{Title: "Arriving"}
	require.NoError(t, sim.Update(context.Background(), h, platform.UpdateParams{
		Content: platform.Content{State: platform.StateActive, RelevanceScore: 0.5},
		Alert:   alert,
	}))
	snap, _ := sim.Snapshot(h.ID())
	require.Equal(t, 0.5, snap.Content.RelevanceScore)
	require.Equal(t, 1, snap.Updates)
	require.Equal(t, alert, snap.LastAlert)
}

func TestUpdate_ForeignHandle(t *testing.T) {
	sim := New(DefaultConfig())
	other := New(DefaultConfig())
	h := request(t, other)

	err := sim.Update(context.Background(), h, platform.UpdateParams{})
	require.ErrorIs(t, err, platform.AuthMalformedActivityIdentifier)
	err = sim.End(context.Background(), h, platform.EndParams{})
	require.ErrorIs(t, err, platform.AuthMalformedActivityIdentifier)
}

func TestEnd_DismissalClamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		policy platform.DismissalPolicy
		want   time.Time
	}{
		{"default", platform.DismissalPolicy{Kind: platform.DismissDefault}, now.Add(MaxDismissalWindow)},
		{"immediate", platform.DismissalPolicy{Kind: platform.DismissImmediate}, now},
		{"after within window", platform.DismissalPolicy{Kind: platform.DismissAfter, Date: now.Add(time.Hour)}, now.Add(time.Hour)},
		{"after beyond window", platform.DismissalPolicy{Kind: platform.DismissAfter, Date: now.Add(6 * time.Hour)}, now.Add(MaxDismissalWindow)},
		{"after in past", platform.DismissalPolicy{Kind: platform.DismissAfter, Date: now.Add(-time.Hour)}, now},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim := New(DefaultConfig(), WithClock(fixedClock(now)))
			h := request(t, sim)
			require.NoError(t, sim.End(context.Background(), h, platform.EndParams{
				Content:   platform.Content{State: platform.StateEnded},
				Dismissal: tc.policy,
			}))
			snap, _ := sim.Snapshot(h.ID())
			require.True(t, snap.Ended)
			require.Equal(t, tc.want, snap.DismissAt)
			require.Equal(t, 0, sim.LiveCount())

			// Ended activities ignore further calls.
			require.NoError(t, sim.Update(context.Background(), h, platform.UpdateParams{}))
			require.NoError(t, sim.End(context.Background(), h, platform.EndParams{}))
		})
	}
}

func TestRequest_PrunesDismissed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sim := New(DefaultConfig(), WithClock(func() time.Time { return now }))

	gone := request(t, sim)
	require.NoError(t, sim.End(context.Background(), gone, platform.EndParams{
		Dismissal: platform.DismissalPolicy{Kind: platform.DismissImmediate},
	}))
	lingering := request(t, sim)
	require.NoError(t, sim.End(context.Background(), lingering, platform.EndParams{
		Dismissal: platform.DismissalPolicy{Kind: platform.DismissAfter, Date: now.Add(time.Hour)},
	}))
	running := request(t, sim)

	// Still visible at the instant of dismissal.
	_, ok := sim.Snapshot(gone.ID())
	require.True(t, ok)

	now = now.Add(time.Minute)
	request(t, sim)
	_, ok = sim.Snapshot(gone.ID())
	require.False(t, ok)
	_, ok = sim.Snapshot(lingering.ID())
	require.True(t, ok)

	now = now.Add(2 * time.Hour)
	request(t, sim)
	_, ok = sim.Snapshot(lingering.ID())
	require.False(t, ok)
	_, ok = sim.Snapshot(running.ID())
	require.True(t, ok)
	require.Len(t, sim.activities, 3)
	require.Equal(t, 3, sim.LiveCount())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultConfig()).Request(ctx, platform.RequestParams{})
	require.ErrorIs(t, err, context.Canceled)
}

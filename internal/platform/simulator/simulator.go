// Package simulator is an in-process implementation of the native activity
// framework. It enforces the platform's documented limits so the lifecycle
// service can run, and be tested, without a device.
package simulator

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/dynamic-activities/internal/platform"
)

const (
	// MaxAttributesBytes is the ceiling on encoded static attributes.
	MaxAttributesBytes = 4096
	// MaxDismissalWindow bounds how long an ended activity stays visible.
	MaxDismissalWindow = 4 * time.Hour

	pushTokenBytes = 32
)

var (
	baseVersion     = platform.Version{Major: 16, Minor: 1}
	styleVersion    = platform.Version{Major: 17}
	startOpsVersion = platform.Version{Major: 18}
)

// Config describes the simulated device.
type Config struct {
	OS                platform.OS
	Version           platform.Version
	ActivitiesEnabled bool
	Entitled          bool
	Foreground        bool
	MaxPerApp         int
	MaxGlobal         int
	// OtherActivities counts activities other apps keep running on the device.
	OtherActivities int
}

// DefaultConfig is a current iOS device with everything permitted.
func DefaultConfig() Config {
	return Config{
		OS:                platform.OSiOS,
		Version:           platform.Version{Major: 18, Minor: 2},
		ActivitiesEnabled: true,
		Entitled:          true,
		Foreground:        true,
		MaxPerApp:         5,
		MaxGlobal:         10,
	}
}

// Simulator implements platform.API.
type Simulator struct {
	mu         sync.Mutex
	cfg        Config
	activities map[string]*entry
	now        func() time.Time
	logger     *slog.Logger
}

type entry struct {
	snap Snapshot
}

// Snapshot is a read-only view of one simulated activity.
type Snapshot struct {
	ID         string
	Attributes platform.Attributes
	Content    platform.Content
	PushToken  []byte
	Channel    string
	Style      *platform.Style
	StartDate  *time.Time
	LastAlert  *platform.AlertConfiguration
	Updates    int
	Ended      bool
	EndedAt    time.Time
	Dismissal  platform.DismissalKind
	// DismissAt is the effective removal instant after clamping.
	DismissAt time.Time
}

type handle struct {
	id    string
	token []byte
	owner *Simulator
}

func (h *handle) ID() string        { return h.id }
func (h *handle) PushToken() []byte { return h.token }

// Option customizes a Simulator.
type Option func(*Simulator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a simulator for cfg.
func New(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:        cfg,
		activities: make(map[string]*entry),
		now:        time.Now,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Info implements platform.API.
func (s *Simulator) Info() platform.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return platform.Info{OS: s.cfg.OS, Version: s.cfg.Version}
}

// ActivitiesEnabled implements platform.API.
func (s *Simulator) ActivitiesEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ActivitiesEnabled
}

// SetActivitiesEnabled flips the user's authorization.
func (s *Simulator) SetActivitiesEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.ActivitiesEnabled = enabled
}

// SetForeground moves the simulated app between foreground and background.
func (s *Simulator) SetForeground(foreground bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Foreground = foreground
}

// SetVersion changes the running OS version, as after a system update.
func (s *Simulator) SetVersion(v platform.Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Version = v
}

// Request implements platform.API.
func (s *Simulator) Request(ctx context.Context, params platform.RequestParams) (platform.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAvailable(baseVersion); err != nil {
		return nil, err
	}
	if err := s.checkRequestParams(params); err != nil {
		return nil, err
	}
	switch {
	case !s.cfg.ActivitiesEnabled:
		return nil, platform.AuthDenied
	case !s.cfg.Entitled:
		return nil, platform.AuthUnentitled
	case !s.cfg.Foreground:
		return nil, platform.AuthVisibility
	}

	s.pruneLocked(s.now())

	encoded, err := json.Marshal(params.Attributes)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	if len(encoded) > MaxAttributesBytes {
		return nil, platform.AuthAttributesTooLarge
	}

	live := s.liveCountLocked()
	if s.cfg.MaxPerApp > 0 && live >= s.cfg.MaxPerApp {
		return nil, platform.AuthTargetMaximumExceeded
	}
	if s.cfg.MaxGlobal > 0 && live+s.cfg.OtherActivities >= s.cfg.MaxGlobal {
		return nil, platform.AuthGlobalMaximumExceeded
	}

	h := &handle{id: strings.ToUpper(uuid.NewString()), owner: s}
	snap := Snapshot{
		ID:         h.id,
		Attributes: params.Attributes,
		Content:    params.Content,
		Style:      params.Style,
		StartDate:  params.StartDate,
		LastAlert:  params.Alert,
	}
	if params.PushType != nil {
		token := make([]byte, pushTokenBytes)
		if _, err := rand.Read(token); err != nil {
			return nil, fmt.Errorf("issue push token: %w", err)
		}
		h.token = token
		snap.PushToken = token
		snap.Channel = params.PushType.Channel
	}
	s.activities[h.id] = &entry{snap: snap}
	s.logger.Debug("simulated activity requested", "activity_id", h.id, "live", live+1)
	return h, nil
}

// Update implements platform.API. Updating an ended activity is a no-op.
func (s *Simulator) Update(ctx context.Context, h platform.Handle, params platform.UpdateParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAvailable(baseVersion); err != nil {
		return err
	}
	if err := s.checkState(params.Content.State); err != nil {
		return err
	}
	e, err := s.resolveLocked(h)
	if err != nil {
		return err
	}
	if e.snap.Ended {
		return nil
	}
	e.snap.Content = params.Content
	e.snap.Updates++
	if params.Alert != nil {
		e.snap.LastAlert = params.Alert
	}
	return nil
}

// End implements platform.API. The dismissal instant is clamped to at most
// MaxDismissalWindow after the call.
func (s *Simulator) End(ctx context.Context, h platform.Handle, params platform.EndParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAvailable(baseVersion); err != nil {
		return err
	}
	e, err := s.resolveLocked(h)
	if err != nil {
		return err
	}
	if e.snap.Ended {
		return nil
	}

	now := s.now()
	horizon := now.Add(MaxDismissalWindow)
	dismissAt := horizon
	switch params.Dismissal.Kind {
	case platform.DismissImmediate:
		dismissAt = now
	case platform.DismissAfter:
		dismissAt = params.Dismissal.Date
		if dismissAt.Before(now) {
			dismissAt = now
		}
		if dismissAt.After(horizon) {
			dismissAt = horizon
		}
	}

	e.snap.Content = params.Content
	e.snap.Ended = true
	e.snap.EndedAt = now
	e.snap.Dismissal = params.Dismissal.Kind
	e.snap.DismissAt = dismissAt
	s.logger.Debug("simulated activity ended", "activity_id", e.snap.ID, "dismiss_at", dismissAt)
	return nil
}

// Snapshot returns the state of activity id.
func (s *Simulator) Snapshot(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.activities[id]
	if !ok {
		return Snapshot{}, false
	}
	return e.snap, true
}

// LiveCount returns the number of activities that have not ended.
func (s *Simulator) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveCountLocked()
}

func (s *Simulator) liveCountLocked() int {
	n := 0
	for _, e := range s.activities {
		if !e.snap.Ended {
			n++
		}
	}
	return n
}

// pruneLocked forgets ended activities whose dismissal instant has passed.
// Their snapshots stay readable until then.
func (s *Simulator) pruneLocked(now time.Time) {
	for id, e := range s.activities {
		if e.snap.Ended && e.snap.DismissAt.Before(now) {
			delete(s.activities, id)
		}
	}
}

func (s *Simulator) checkAvailable(required platform.Version) error {
	if !s.cfg.OS.Capable() {
		return platform.AuthUnsupported
	}
	if !s.cfg.Version.AtLeast(required) {
		return &platform.UnavailableError{Running: s.cfg.Version, Required: required}
	}
	return nil
}

// checkRequestParams rejects parameters the running version does not know.
// On a device these would not even link.
func (s *Simulator) checkRequestParams(params platform.RequestParams) error {
	if params.Style != nil {
		if err := s.checkAvailable(styleVersion); err != nil {
			return err
		}
	}
	if params.Alert != nil || params.StartDate != nil {
		if err := s.checkAvailable(startOpsVersion); err != nil {
			return err
		}
	}
	if params.PushType != nil && params.PushType.Channel != "" {
		if err := s.checkAvailable(startOpsVersion); err != nil {
			return err
		}
	}
	return s.checkState(params.Content.State)
}

func (s *Simulator) checkState(state platform.ContentState) error {
	if state == platform.StatePending {
		return s.checkAvailable(styleVersion)
	}
	return nil
}

func (s *Simulator) resolveLocked(h platform.Handle) (*entry, error) {
	sh, ok := h.(*handle)
	if !ok || sh.owner != s {
		return nil, platform.AuthMalformedActivityIdentifier
	}
	e, ok := s.activities[sh.id]
	if !ok {
		return nil, platform.AuthMalformedActivityIdentifier
	}
	return e, nil
}

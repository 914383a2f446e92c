package activity

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/dynamic-activities/internal/apperror"
	"github.com/rpggio/dynamic-activities/internal/capability"
	"github.com/rpggio/dynamic-activities/internal/domain/journal"
	"github.com/rpggio/dynamic-activities/internal/metrics"
	"github.com/rpggio/dynamic-activities/internal/platform"
	"github.com/rpggio/dynamic-activities/internal/registry"
)

const (
	opStart  = "start"
	opUpdate = "update"
	opEnd    = "end"
)

// Registry is the handle registry the service owns entries in.
type Registry = registry.Registry[platform.Handle]

// Service drives the start/update/end lifecycle against the platform.
//
// Operations on the same id are not serialized; a caller issuing update and
// end concurrently for one activity gets whichever order the platform sees.
type Service struct {
	api      platform.API
	registry *Registry
	journal  Journal
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithJournal records every outcome to j.
func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithObserver reports operation metrics to o.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a lifecycle service. A nil registry gets a fresh one.
func NewService(api platform.API, reg *Registry, logger *slog.Logger, opts ...Option) *Service {
	if reg == nil {
		reg = registry.New[platform.Handle]()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		api:      api,
		registry: reg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supported probes the running platform. It never fails.
func (s *Service) Supported() Support {
	info := s.api.Info()
	if !info.OS.Capable() {
		return Support{
			PlatformVersion: info.Version.Number(),
			Comment:         fmt.Sprintf("Live Activities are only available on iOS; this device runs %s %s.", info.OS.DisplayName(), info.Version),
		}
	}

	snap := capability.Resolve(info.Version)
	if !snap.Supported {
		return Support{
			PlatformVersion: info.Version.Number(),
			Comment:         apperror.UnsupportedVersionMessage(info.OS, info.Version, capability.MinimumVersion),
		}
	}

	params := make([]string, 0, len(snap.Params()))
	for _, p := range snap.Params() {
		params = append(params, string(p))
	}
	comment := fmt.Sprintf("Live Activities are supported on %s %s.", info.OS.DisplayName(), info.Version)
	if !s.api.ActivitiesEnabled() {
		comment = fmt.Sprintf("Live Activities are supported on %s %s but are disabled in Settings.", info.OS.DisplayName(), info.Version)
	}
	return Support{
		Supported:       true,
		PlatformVersion: info.Version.Number(),
		Comment:         comment,
		Parameters:      params,
	}
}

// Start requests a new activity and registers its handle.
func (s *Service) Start(ctx context.Context, req StartRequest) (res *StartResult, err error) {
	began := s.now()
	defer func() {
		id := ""
		if res != nil {
			id = res.ActivityID
		}
		s.finish(ctx, opStart, id, began, err)
	}()

	info := s.api.Info()
	if err := s.checkFloor(info); err != nil {
		return nil, err
	}
	if !s.api.ActivitiesEnabled() {
		return nil, apperror.Authorization(apperror.CodeDenied, s.stamp())
	}

	snap := capability.Resolve(info.Version)
	params := platform.RequestParams{
		Attributes: platform.Attributes{Title: req.Attributes.Title, Body: req.Attributes.Body},
	}

	started := s.now()
	if req.StartDate != nil && snap.Allows(capability.ParamStartDate) {
		startDate := *req.StartDate
		params.StartDate = &startDate
		started = startDate
	}
	params.Content = nativeContent(req.Content, snap, started)

	if req.Style != nil && snap.Allows(capability.ParamStartStyle) {
		style := platform.Style(*req.Style)
		params.Style = &style
	}
	if req.Alert != nil && snap.Allows(capability.ParamStartAlert) {
		params.Alert = nativeAlert(req.Alert)
	}
	if req.PushToken != nil {
		params.PushType = &platform.PushType{}
		if req.PushToken.Channel != "" && snap.Allows(capability.ParamPushChannel) {
			params.PushType.Channel = req.PushToken.Channel
		}
	}
	s.logDowngrades(req, params)

	h, err := s.api.Request(ctx, params)
	if err != nil {
		return nil, apperror.Map(err, info, s.stamp())
	}

	s.registry.Insert(h.ID(), h)
	res = &StartResult{ActivityID: h.ID()}
	if token := h.PushToken(); len(token) > 0 {
		res.PushToken = hex.EncodeToString(token)
	}
	s.logger.Info("activity started", "activity_id", res.ActivityID, "push", res.PushToken != "")
	return res, nil
}

// Update submits new content for a live activity. It returns once the
// platform call has completed.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (err error) {
	began := s.now()
	defer func() { s.finish(ctx, opUpdate, req.ActivityID, began, err) }()

	info := s.api.Info()
	if err := s.checkFloor(info); err != nil {
		return err
	}
	h, ok := s.registry.Lookup(req.ActivityID)
	if !ok {
		return apperror.NotFound(req.ActivityID, ErrNotFound, s.stamp())
	}

	snap := capability.Resolve(info.Version)
	ts := s.now()
	if req.Timestamp != nil && snap.Allows(capability.ParamUpdateTimestamp) {
		ts = *req.Timestamp
	}

	params := platform.UpdateParams{
		Content: nativeContent(req.Content, snap, ts),
		Alert:   nativeAlert(req.Alert),
	}
	if err := s.api.Update(ctx, h, params); err != nil {
		return apperror.Map(err, info, apperror.WithActivityID(req.ActivityID), s.stamp())
	}
	s.logger.Info("activity updated", "activity_id", req.ActivityID, "state", params.Content.State)
	return nil
}

// End terminates a live activity. The displayed state is forced to ended.
// The registry entry is dropped once the platform call returns, whether or
// not it failed; a second End for the same id fails with not found.
func (s *Service) End(ctx context.Context, req EndRequest) (err error) {
	began := s.now()
	defer func() { s.finish(ctx, opEnd, req.ActivityID, began, err) }()

	info := s.api.Info()
	if err := s.checkFloor(info); err != nil {
		return err
	}
	h, ok := s.registry.Lookup(req.ActivityID)
	if !ok {
		return apperror.NotFound(req.ActivityID, ErrNotFound, s.stamp())
	}

	snap := capability.Resolve(info.Version)
	ts := s.now()
	if req.Timestamp != nil && snap.Allows(capability.ParamEndTimestamp) {
		ts = *req.Timestamp
	}
	content := nativeContent(req.Content, snap, ts)
	content.State = platform.StateEnded

	params := platform.EndParams{
		Content:   content,
		Dismissal: nativeDismissal(req.Dismissal),
	}
	callErr := s.api.End(ctx, h, params)
	s.registry.Remove(req.ActivityID)
	if callErr != nil {
		return apperror.Map(callErr, info, apperror.WithActivityID(req.ActivityID), s.stamp())
	}
	s.logger.Info("activity ended", "activity_id", req.ActivityID, "dismissal", params.Dismissal.Kind)
	return nil
}

// Live reports whether id has a registry entry.
func (s *Service) Live(id string) bool {
	_, ok := s.registry.Lookup(id)
	return ok
}

func (s *Service) checkFloor(info platform.Info) error {
	if !info.OS.Capable() {
		return apperror.UnsupportedPlatform(info.OS, s.stamp())
	}
	if !capability.Resolve(info.Version).Supported {
		return apperror.System(apperror.CodeUnsupported,
			apperror.WithMessage(apperror.UnsupportedVersionMessage(info.OS, info.Version, capability.MinimumVersion)),
			s.stamp())
	}
	return nil
}

// stamp dates an error with the service clock.
func (s *Service) stamp() apperror.Option {
	return apperror.WithTimestamp(s.now())
}

func nativeContent(c Content, snap capability.Snapshot, ts time.Time) platform.Content {
	state := platform.ContentState(c.State)
	switch {
	case state == "":
		state = platform.StateActive
	case state == platform.StatePending && !snap.Allows(capability.ParamPendingState):
		state = platform.StateActive
	}
	out := platform.Content{State: state, Timestamp: ts}
	if c.RelevanceScore != nil {
		out.RelevanceScore = *c.RelevanceScore
	}
	if c.StaleDate != nil {
		stale := *c.StaleDate
		out.StaleDate = &stale
	}
	return out
}

func nativeAlert(a *AlertConfiguration) *platform.AlertConfiguration {
	if a == nil {
		return nil
	}
	return &platform.AlertConfiguration{Title: a.Title, Body: a.Body, Sound: a.Sound}
}

// nativeDismissal passes an After date through untouched; the platform owns
// the four hour clamp.
func nativeDismissal(p *DismissalPolicy) platform.DismissalPolicy {
	if p == nil {
		return platform.DismissalPolicy{Kind: platform.DismissDefault}
	}
	switch p.Kind {
	case DismissImmediate:
		return platform.DismissalPolicy{Kind: platform.DismissImmediate}
	case DismissAfter:
		if p.Date == nil || p.Date.IsZero() {
			return platform.DismissalPolicy{Kind: platform.DismissDefault}
		}
		return platform.DismissalPolicy{Kind: platform.DismissAfter, Date: *p.Date}
	default:
		return platform.DismissalPolicy{Kind: platform.DismissDefault}
	}
}

func (s *Service) logDowngrades(req StartRequest, params platform.RequestParams) {
	var dropped []string
	if req.Style != nil && params.Style == nil {
		dropped = append(dropped, string(capability.ParamStartStyle))
	}
	if req.Alert != nil && params.Alert == nil {
		dropped = append(dropped, string(capability.ParamStartAlert))
	}
	if req.StartDate != nil && params.StartDate == nil {
		dropped = append(dropped, string(capability.ParamStartDate))
	}
	if req.PushToken != nil && req.PushToken.Channel != "" && params.PushType.Channel == "" {
		dropped = append(dropped, string(capability.ParamPushChannel))
	}
	if req.Content.State == StatePending && params.Content.State != platform.StatePending {
		dropped = append(dropped, string(capability.ParamPendingState))
	}
	if len(dropped) > 0 {
		s.logger.Debug("optional parameters not supported by platform version, omitted", "parameters", dropped)
	}
}

func (s *Service) finish(ctx context.Context, op, activityID string, began time.Time, err error) {
	outcome := metrics.OutcomeOK
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		outcome = string(appErr.Code)
	} else if err != nil {
		outcome = string(apperror.CodeUnknownError)
	}

	if s.observer != nil {
		s.observer.ObserveOperation(op, outcome, s.now().Sub(began))
		s.observer.SetLive(s.registry.Len())
	}
	if err != nil {
		s.logger.Warn("lifecycle operation failed", "operation", op, "activity_id", activityID, "code", outcome, "error", err)
	}
	if s.journal == nil {
		return
	}

	event := &journal.Event{ActivityID: activityID, Operation: op}
	switch {
	case err != nil:
		event.EventType = journal.TypeFailed
		event.Code = outcome
		event.Summary = err.Error()
		if appErr != nil {
			if details, mErr := json.Marshal(appErr); mErr == nil {
				event.Details = string(details)
			}
		}
	case op == opStart:
		event.EventType = journal.TypeStarted
		event.Summary = "activity started"
	case op == opUpdate:
		event.EventType = journal.TypeUpdated
		event.Summary = "activity updated"
	default:
		event.EventType = journal.TypeEnded
		event.Summary = "activity ended"
	}
	// The journal is diagnostic; its failures never fail the operation.
	if jErr := s.journal.LogEvent(context.WithoutCancel(ctx), event); jErr != nil {
		s.logger.Error("failed to journal lifecycle event", "operation", op, "error", jErr)
	}
}

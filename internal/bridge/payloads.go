package bridge

import (
	"math"
	"time"

	"github.com/rpggio/dynamic-activities/internal/domain/activity"
	"github.com/rpggio/dynamic-activities/internal/domain/journal"
)

// Timestamps cross the bridge as milliseconds since the Unix epoch, the
// calling runtime's native date representation.

// AttributesPayload is the runtime form of activity.Attributes.
type AttributesPayload struct {
	Title string `json:"title" validate:"max=1024"`
	Body  string `json:"body" validate:"max=4096"`
}

// ContentPayload is the runtime form of activity.Content.
type ContentPayload struct {
	State          string   `json:"state" validate:"omitempty,oneof=active pending stale dismissed ended" jsonschema:"one of active, pending, stale, dismissed, ended"`
	RelevanceScore *float64 `json:"relevanceScore,omitempty" validate:"omitempty,gte=0,lte=1" jsonschema:"priority hint between 0 and 1"`
	StaleDate      *float64 `json:"staleDate,omitempty" validate:"omitempty,gte=0,lte=253402300799999" jsonschema:"milliseconds since the Unix epoch after which the content is outdated"`
}

// PushTokenPayload requests a push token, optionally on a broadcast channel.
type PushTokenPayload struct {
	Channel string `json:"channel,omitempty" validate:"max=256"`
}

// AlertPayload is the runtime form of activity.AlertConfiguration.
type AlertPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

// StartPayload carries start arguments.
type StartPayload struct {
	Attributes         AttributesPayload `json:"attributes"`
	Content            ContentPayload    `json:"content"`
	PushToken          *PushTokenPayload `json:"pushToken,omitempty"`
	Style              *string           `json:"style,omitempty" validate:"omitempty,oneof=standard transient" jsonschema:"standard or transient"`
	AlertConfiguration *AlertPayload     `json:"alertConfiguration,omitempty"`
	StartDate          *float64          `json:"startDate,omitempty" validate:"omitempty,gte=0,lte=253402300799999" jsonschema:"scheduled start in milliseconds since the Unix epoch"`
}

// UpdatePayload carries update arguments.
type UpdatePayload struct {
	ActivityID         string         `json:"activityId" validate:"required" jsonschema:"id returned by start"`
	Content            ContentPayload `json:"content"`
	AlertConfiguration *AlertPayload  `json:"alertConfiguration,omitempty"`
	Timestamp          *float64       `json:"timestamp,omitempty" validate:"omitempty,gte=0,lte=253402300799999"`
}

// EndPayload carries end arguments. DismissalDate is read only for "after".
type EndPayload struct {
	ActivityID      string         `json:"activityId" validate:"required" jsonschema:"id returned by start"`
	Content         ContentPayload `json:"content"`
	DismissalPolicy string         `json:"dismissalPolicy,omitempty" validate:"omitempty,oneof=default immediate after" jsonschema:"one of default, immediate, after"`
	DismissalDate   *float64       `json:"dismissalDate,omitempty" validate:"omitempty,gte=0,lte=253402300799999" jsonschema:"removal time for the after policy in milliseconds since the Unix epoch"`
	Timestamp       *float64       `json:"timestamp,omitempty" validate:"omitempty,gte=0,lte=253402300799999"`
}

// EventsPayload filters the lifecycle journal.
type EventsPayload struct {
	ActivityID string `json:"activityId,omitempty"`
	Type       string `json:"type,omitempty" validate:"omitempty,oneof=started updated ended failed"`
	Limit      int    `json:"limit,omitempty" validate:"gte=0,lte=500"`
	Offset     int    `json:"offset,omitempty" validate:"gte=0"`
}

func (p StartPayload) request() activity.StartRequest {
	req := activity.StartRequest{
		Attributes: activity.Attributes{Title: p.Attributes.Title, Body: p.Attributes.Body},
		Content:    p.Content.content(),
		Alert:      p.AlertConfiguration.alert(),
		StartDate:  fromMillis(p.StartDate),
	}
	if p.PushToken != nil {
		req.PushToken = &activity.PushToken{Channel: p.PushToken.Channel}
	}
	if p.Style != nil {
		style := activity.Style(*p.Style)
		req.Style = &style
	}
	return req
}

func (p UpdatePayload) request() activity.UpdateRequest {
	return activity.UpdateRequest{
		ActivityID: p.ActivityID,
		Content:    p.Content.content(),
		Alert:      p.AlertConfiguration.alert(),
		Timestamp:  fromMillis(p.Timestamp),
	}
}

func (p EndPayload) request() activity.EndRequest {
	req := activity.EndRequest{
		ActivityID: p.ActivityID,
		Content:    p.Content.content(),
		Timestamp:  fromMillis(p.Timestamp),
	}
	if p.DismissalPolicy != "" {
		req.Dismissal = &activity.DismissalPolicy{Kind: activity.DismissalKind(p.DismissalPolicy)}
		if req.Dismissal.Kind == activity.DismissAfter {
			req.Dismissal.Date = fromMillis(p.DismissalDate)
		}
	}
	return req
}

func (p EventsPayload) options() journal.ListOptions {
	opts := journal.ListOptions{Limit: p.Limit, Offset: p.Offset}
	if p.ActivityID != "" {
		id := p.ActivityID
		opts.ActivityID = &id
	}
	if p.Type != "" {
		eventType := journal.EventType(p.Type)
		opts.EventType = &eventType
	}
	return opts
}

func (p ContentPayload) content() activity.Content {
	c := activity.Content{
		State:     activity.State(p.State),
		StaleDate: fromMillis(p.StaleDate),
	}
	if p.RelevanceScore != nil {
		score := *p.RelevanceScore
		c.RelevanceScore = &score
	}
	return c
}

func (p *AlertPayload) alert() *activity.AlertConfiguration {
	if p == nil {
		return nil
	}
	return &activity.AlertConfiguration{Title: p.Title, Body: p.Body, Sound: p.Sound}
}

// fromMillis converts epoch milliseconds. Payload validation bounds every
// date field to [0, 253402300799999], the last millisecond of year 9999, which
// keeps the conversion inside the int64 range.
func fromMillis(ms *float64) *time.Time {
	if ms == nil {
		return nil
	}
	whole, frac := math.Modf(*ms)
	t := time.UnixMilli(int64(whole)).Add(time.Duration(frac * float64(time.Millisecond))).UTC()
	return &t
}

// Millis renders t in the bridge's timestamp representation.
func Millis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

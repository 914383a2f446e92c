package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/dynamic-activities/internal/bridge"
	"github.com/rpggio/dynamic-activities/internal/domain/journal"
)

// Tool names.
const (
	ToolAreSupported    = "are_supported"
	ToolStartActivity   = "start_activity"
	ToolUpdateActivity  = "update_activity"
	ToolEndActivity     = "end_activity"
	ToolLifecycleEvents = "lifecycle_events"
)

type noArgs struct{}

// EventsResult wraps journal entries; tool results must be objects.
type EventsResult struct {
	Events []journal.Event `json:"events"`
}

// Done is the result of update and end.
type Done struct {
	OK bool `json:"ok"`
}

func registerTools(server *sdkmcp.Server, b *bridge.Bridge, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        ToolAreSupported,
		Description: "Report whether Live Activities are available on the running OS, its version, and which optional parameters it accepts.",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, _ noArgs) (*sdkmcp.CallToolResult, any, error) {
		return jsonResult(b.AreSupported()), nil, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        ToolStartActivity,
		Description: "Start a Live Activity. Returns its activityId and, when a push token was requested, the hex encoded token.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in bridge.StartPayload) (*sdkmcp.CallToolResult, any, error) {
		if err := b.Validate(bridge.MethodStart, &in); err != nil {
			return toolError(logger, ToolStartActivity, err), nil, nil
		}
		res, err := bridge.Await(ctx, b.Start(ctx, in)).Unpack()
		if err != nil {
			return toolError(logger, ToolStartActivity, err), nil, nil
		}
		return jsonResult(res), nil, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        ToolUpdateActivity,
		Description: "Replace the displayed content of a running Live Activity.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in bridge.UpdatePayload) (*sdkmcp.CallToolResult, any, error) {
		if err := b.Validate(bridge.MethodUpdate, &in); err != nil {
			return toolError(logger, ToolUpdateActivity, err), nil, nil
		}
		if _, err := bridge.Await(ctx, b.Update(ctx, in)).Unpack(); err != nil {
			return toolError(logger, ToolUpdateActivity, err), nil, nil
		}
		return jsonResult(Done{OK: true}), nil, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        ToolEndActivity,
		Description: "End a Live Activity. The final state is always ended; dismissalPolicy controls how long it stays visible.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in bridge.EndPayload) (*sdkmcp.CallToolResult, any, error) {
		if err := b.Validate(bridge.MethodEnd, &in); err != nil {
			return toolError(logger, ToolEndActivity, err), nil, nil
		}
		if _, err := bridge.Await(ctx, b.End(ctx, in)).Unpack(); err != nil {
			return toolError(logger, ToolEndActivity, err), nil, nil
		}
		return jsonResult(Done{OK: true}), nil, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        ToolLifecycleEvents,
		Description: "List recorded lifecycle outcomes, newest first. Filter by activityId or type (started, updated, ended, failed).",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in bridge.EventsPayload) (*sdkmcp.CallToolResult, any, error) {
		if err := b.Validate(bridge.MethodLifecycleEvents, &in); err != nil {
			return toolError(logger, ToolLifecycleEvents, err), nil, nil
		}
		events, err := b.LifecycleEvents(ctx, in)
		if err != nil {
			return toolError(logger, ToolLifecycleEvents, err), nil, nil
		}
		return jsonResult(EventsResult{Events: events}), nil, nil
	})
}

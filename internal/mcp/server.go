package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/dynamic-activities/internal/bridge"
)

// Version is reported in the MCP implementation info.
const Version = "0.1.0"

// ClientResolver resolves a client name from a bearer token.
type ClientResolver interface {
	ResolveClient(ctx context.Context, token string) (string, error)
}

// Config contains server configuration.
type Config struct {
	Bridge        *bridge.Bridge
	Resolver      ClientResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "dynamic-activities",
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Each call wraps the previous handler, so the client middleware is added
	// last to run first and put the client on the context the logger reads.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))
	server.AddReceivingMiddleware(clientMiddleware(cfg))

	registerTools(server, cfg.Bridge, cfg.Logger)

	return server
}

// clientMiddleware authenticates HTTP callers when auth is on. Stdio is a
// local pipe and never authenticates.
func clientMiddleware(cfg Config) sdkmcp.Middleware {
	if cfg.TransportMode == "http" && cfg.AuthEnabled && cfg.Resolver != nil {
		return authMiddleware(cfg.Resolver)
	}
	return noAuthMiddleware(defaultClient(cfg.TransportMode))
}

func defaultClient(mode string) string {
	if mode == "" {
		return "local"
	}
	return mode
}

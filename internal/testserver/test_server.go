package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/dynamic-activities/internal/bridge"
	"github.com/rpggio/dynamic-activities/internal/domain/activity"
	"github.com/rpggio/dynamic-activities/internal/domain/journal"
	"github.com/rpggio/dynamic-activities/internal/mcp"
	"github.com/rpggio/dynamic-activities/internal/metrics"
	"github.com/rpggio/dynamic-activities/internal/platform/simulator"
	"github.com/rpggio/dynamic-activities/internal/sqlite"
	"github.com/rpggio/dynamic-activities/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is the full HTTP stack over a simulated device.
type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Token     string
	Simulator *simulator.Simulator
	Metrics   *prometheus.Registry
	Bridge    *bridge.Bridge
}

// New starts a server whose only accepted bearer token is token.
func New(t *testing.T, token string, device simulator.Config) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	journalSvc := journal.NewService(sqlite.NewJournalRepository(db), nil)

	reg := prometheus.NewRegistry()
	instruments, err := metrics.NewLifecycle(reg, "dynact")
	require.NoError(t, err)

	sim := simulator.New(device)
	var lifecycle bridge.Lifecycle = activity.NewService(sim, nil, nil,
		activity.WithJournal(journalSvc),
		activity.WithObserver(instruments))
	if !device.OS.Capable() {
		lifecycle = bridge.Unsupported{Info: sim.Info()}
	}
	b := bridge.New(lifecycle, journalSvc, nil)

	resolver := transport.StaticTokens{token: "test-client"}
	mcpServer := mcp.NewServer(mcp.Config{
		Bridge:        b,
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true, JSONResponse: true},
	)

	server := httptest.NewServer(transport.NewServer(b, transport.AuthMiddleware(resolver),
		transport.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		transport.WithMCP(mcpHandler)))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Token:     token,
		Simulator: sim,
		Metrics:   reg,
		Bridge:    b,
	}

	t.Cleanup(func() {
		server.Close()
		b.Wait()
		_ = db.Close()
	})

	return ts
}

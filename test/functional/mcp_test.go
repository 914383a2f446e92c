package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/rpggio/dynamic-activities/internal/platform"
	"github.com/rpggio/dynamic-activities/internal/platform/simulator"
	"github.com/rpggio/dynamic-activities/internal/testserver"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func rpcCall(t *testing.T, ts *testserver.TestServer, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+ts.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// initializeSession performs the MCP initialize handshake
func initializeSession(t *testing.T, ts *testserver.TestServer) {
	t.Helper()

	resp := rpcCall(t, ts, "initialize", map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	})
	require.Nil(t, resp.Error, "Initialize failed: %v", resp.Error)
}

type toolOutcome struct {
	IsError bool
	Body    map[string]any
}

// callTool makes a tools/call RPC call and decodes the text content.
func callTool(t *testing.T, ts *testserver.TestServer, toolName string, args any) toolOutcome {
	t.Helper()

	params := map[string]any{
		"name": toolName,
	}
	if args != nil {
		params["arguments"] = args
	}

	resp := rpcCall(t, ts, "tools/call", params)
	require.Nil(t, resp.Error, "RPC error: %v", resp.Error)

	var toolResult struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &toolResult))
	require.NotEmpty(t, toolResult.Content)

	out := toolOutcome{IsError: toolResult.IsError}
	require.NoError(t, json.Unmarshal([]byte(toolResult.Content[0].Text), &out.Body))
	return out
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token", simulator.DefaultConfig())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBufferString(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"are_supported"},"id":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFunctional_Lifecycle(t *testing.T) {
	ts := testserver.New(t, "token", simulator.DefaultConfig())
	initializeSession(t, ts)

	support := callTool(t, ts, "are_supported", nil)
	require.False(t, support.IsError)
	require.Equal(t, true, support.Body["supported"])
	require.Equal(t, 18.2, support.Body["platformVersion"])

	started := callTool(t, ts, "start_activity", map[string]any{
		"attributes": map[string]any{"title": "Ride", "body": "Driver arriving"},
		"content":    map[string]any{"state": "active", "relevanceScore": 1},
		"pushToken":  map[string]any{"channel": "rides"},
	})
	require.False(t, started.IsError, "start failed: %v", started.Body)
	id := started.Body["activityId"].(string)
	require.Len(t, started.Body["pushToken"], 64)

	snap, ok := ts.Simulator.Snapshot(id)
	require.True(t, ok)
	require.Equal(t, "rides", snap.Channel)

	updated := callTool(t, ts, "update_activity", map[string]any{
		"activityId": id,
		"content":    map[string]any{"state": "active", "relevanceScore": 0.25},
	})
	require.False(t, updated.IsError)

	ended := callTool(t, ts, "end_activity", map[string]any{
		"activityId":      id,
		"content":         map[string]any{"state": "active"},
		"dismissalPolicy": "immediate",
	})
	require.False(t, ended.IsError)

	again := callTool(t, ts, "end_activity", map[string]any{
		"activityId": id,
		"content":    map[string]any{"state": "active"},
	})
	require.True(t, again.IsError)
	require.Equal(t, "notFound", again.Body["code"])

	events := callTool(t, ts, "lifecycle_events", map[string]any{"activityId": id})
	require.False(t, events.IsError)
	require.Len(t, events.Body["events"], 4)
}

func TestFunctional_DowngradeOnOlderDevice(t *testing.T) {
	device := simulator.DefaultConfig()
	device.Version = platform.MustParseVersion("16.4")
	ts := testserver.New(t, "token", device)
	initializeSession(t, ts)

	started := callTool(t, ts, "start_activity", map[string]any{
		"attributes":         map[string]any{"title": "Timer", "body": "5 min"},
		"content":            map[string]any{"state": "pending"},
		"style":              "transient",
		"alertConfiguration": map[string]any{"title": "Heads up", "body": "Starting"},
	})
	require.False(t, started.IsError, "start failed: %v", started.Body)

	snap, ok := ts.Simulator.Snapshot(started.Body["activityId"].(string))
	require.True(t, ok)
	require.Nil(t, snap.Style)
	require.Nil(t, snap.LastAlert)
	require.Equal(t, platform.StateActive, snap.Content.State)
}

func TestFunctional_NonCapablePlatform(t *testing.T) {
	device := simulator.DefaultConfig()
	device.OS = platform.OSAndroid
	device.Version = platform.MustParseVersion("14")
	ts := testserver.New(t, "token", device)
	initializeSession(t, ts)

	support := callTool(t, ts, "are_supported", nil)
	require.False(t, support.IsError)
	require.Equal(t, false, support.Body["supported"])

	started := callTool(t, ts, "start_activity", map[string]any{
		"attributes": map[string]any{"title": "x", "body": "y"},
		"content":    map[string]any{"state": "active"},
	})
	require.True(t, started.IsError)
	require.Equal(t, "unsupported", started.Body["code"])
	require.Equal(t, "Live Activities are not supported on this platform.", started.Body["message"])
}

func TestFunctional_DocsResource(t *testing.T) {
	ts := testserver.New(t, "token", simulator.DefaultConfig())
	initializeSession(t, ts)

	resp := rpcCall(t, ts, "resources/read", map[string]any{"uri": "dynact://docs/lifecycle"})
	require.Nil(t, resp.Error)

	var read struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &read))
	require.Len(t, read.Contents, 1)
	require.Contains(t, read.Contents[0].Text, "Error codes")
}

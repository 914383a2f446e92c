package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/dynamic-activities/internal/apperror"
	"github.com/rpggio/dynamic-activities/internal/bridge"
)

// ToolError is the structured content of a failed tool call.
type ToolError struct {
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	RecoverySuggestion string   `json:"recoverySuggestion,omitempty"`
	Fields             []string `json:"fields,omitempty"`
	Details            any      `json:"details,omitempty"`
}

// invalidParamsCode marks payload failures; it is outside the lifecycle
// taxonomy.
const invalidParamsCode = "invalidParams"

func toolError(logger *slog.Logger, tool string, err error) *sdkmcp.CallToolResult {
	var (
		appErr    *apperror.Error
		paramsErr *bridge.ParamsError
		out       ToolError
	)
	switch {
	case errors.As(err, &paramsErr):
		out = ToolError{Code: invalidParamsCode, Message: paramsErr.Error(), Fields: paramsErr.Fields()}
	case errors.As(err, &appErr):
		out = ToolError{
			Code:               string(appErr.Code),
			Message:            appErr.Message,
			RecoverySuggestion: appErr.RecoverySuggestion,
			Details:            appErr,
		}
	default:
		logger.Error("tool failed", "tool", tool, "error", err)
		out = ToolError{Code: string(apperror.CodeUnknownError), Message: err.Error()}
	}

	res := jsonResult(out)
	res.IsError = true
	return res
}

func jsonResult(v any) *sdkmcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return &sdkmcp.CallToolResult{
			IsError: true,
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: fmt.Sprintf("encode result: %v", err)}},
		}
	}
	return &sdkmcp.CallToolResult{
		Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		StructuredContent: v,
	}
}

package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/dynamic-activities/internal/apperror"
	"github.com/rpggio/dynamic-activities/internal/capability"
	"github.com/rpggio/dynamic-activities/internal/platform"
)

const serverInstructions = `dynamic-activities drives Live Activities: system-rendered status surfaces on the lock screen and in the compact status region.

Workflow:
1) Probe: call are_supported. If supported=false, stop; every lifecycle tool will fail with code "unsupported".
2) Start: start_activity with attributes (fixed for the activity's lifetime) and initial content. Keep the returned activityId.
3) Update: update_activity with new content as often as needed. Only the latest content is displayed.
4) End: end_activity with final content and an optional dismissalPolicy (default, immediate, after + dismissalDate).
   The final state is always "ended". Ending twice fails with "notFound".

Optional parameters that the running OS version does not support are silently dropped, never rejected.
Branch on error codes, not messages. Use lifecycle_events to review what happened.

Docs: dynact://docs/lifecycle (capability tiers and error codes).
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     func() string
}

var docResources = []docResource{
	{
		URI:         "dynact://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Live Activity lifecycle",
		Description: "Capability tiers per OS version, dismissal rules and the closed error code set with recovery guidance.",
		Content:     lifecycleDoc,
	},
}

func lifecycleDoc() string {
	var b strings.Builder
	b.WriteString("# Live Activity lifecycle\n\n")
	fmt.Fprintf(&b, "Live Activities require iOS %s or later. Below that every operation fails with `unsupported` before any native call.\n\n", capability.MinimumVersion)

	b.WriteString("## Optional parameters by version\n\n")
	b.WriteString("| Parameter | Available from |\n|---|---|\n")
	all := capability.Resolve(platform.Version{Major: 99}).Params()
	for _, p := range all {
		floor, _ := capability.FloorFor(p)
		fmt.Fprintf(&b, "| `%s` | iOS %s |\n", p, floor)
	}
	b.WriteString("\nUnsupported optional parameters are omitted from the native call. A `pending` state falls back to `active`; a push channel falls back to token push.\n\n")

	b.WriteString("## Dismissal\n\n")
	b.WriteString("- `default`: the system keeps the ended activity for up to four hours.\n")
	b.WriteString("- `immediate`: removed right away.\n")
	b.WriteString("- `after` + `dismissalDate`: removed at the date, clamped by the system to four hours after the end call. Without a date this behaves like `default`.\n\n")

	b.WriteString("## Error codes\n\n")
	b.WriteString("| Code | Recovery |\n|---|---|\n")
	for _, code := range apperror.Codes() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", code, apperror.RecoverySuggestion(code))
	}
	return b.String()
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		content := doc.Content()
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     content,
				}},
			}, nil
		})
	}
}

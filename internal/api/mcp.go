package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/universa-labs/universa-go/internal/auditlog"
	"github.com/universa-labs/universa-go/internal/dispatch"
)

// MCPDeps holds dependencies for the MCP server. Every tool goes through
// the dispatcher, so agent sessions get the same live/simulated fallback
// behavior as the CLI.
type MCPDeps struct {
	Dispatcher *dispatch.Dispatcher
	Audit      *auditlog.Store // optional; service_mode omits call history when nil
}

// NewMCPServer creates an MCP server exposing the matching service tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"universa",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("universa: access layer for the UNIVERSA matching service, with offline simulation fallback."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List all member profiles."),
		),
		mcpListProfiles(deps),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Fetch one profile by id."),
			mcp.WithString("profile_id", mcp.Description("Profile id"), mcp.Required()),
		),
		mcpGetProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("create_profile",
			mcp.WithDescription("Create a new member profile."),
			mcp.WithString("name", mcp.Description("Display name")),
			mcp.WithString("description", mcp.Description("Free-form description")),
			mcp.WithArray("tags", mcp.Description("Optional tags")),
		),
		mcpCreateProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("find_matches",
			mcp.WithDescription("Find scored matches for a profile, best first."),
			mcp.WithString("profile_id", mcp.Description("Requesting profile id"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpFindMatches(deps),
	)

	s.AddTool(
		mcp.NewTool("service_mode",
			mcp.WithDescription("Report whether calls are served by the live backend or the local simulation, with recent call history."),
		),
		mcpServiceMode(deps),
	)

	return s
}

func mcpListProfiles(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc, err := deps.Dispatcher.Request(ctx, "/profiles/", http.MethodGet, nil, nil)
		return mcpDocument(doc, err)
	}
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("profile_id")
		if err != nil {
			return mcpError("profile_id is required"), nil
		}
		doc, err := deps.Dispatcher.Request(ctx, "/profiles/"+id, http.MethodGet, nil, nil)
		return mcpDocument(doc, err)
	}
}

func mcpCreateProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body := map[string]any{}
		if v := req.GetString("name", ""); v != "" {
			body["name"] = v
		}
		if v := req.GetString("description", ""); v != "" {
			body["description"] = v
		}
		if tags := req.GetStringSlice("tags", nil); len(tags) > 0 {
			body["tags"] = tags
		}

		doc, err := deps.Dispatcher.Request(ctx, "/profiles/", http.MethodPost, body, nil)
		return mcpDocument(doc, err)
	}
}

func mcpFindMatches(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("profile_id")
		if err != nil {
			return mcpError("profile_id is required"), nil
		}
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		doc, err := deps.Dispatcher.Request(ctx,
			fmt.Sprintf("/matching/profile/%s/matches", id), http.MethodGet,
			nil, map[string]string{"limit": strconv.Itoa(limit)})
		return mcpDocument(doc, err)
	}
}

func mcpServiceMode(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := map[string]any{"mode": deps.Dispatcher.Mode().String()}

		if deps.Audit != nil {
			if calls, err := deps.Audit.RecentCalls(10); err == nil {
				history := make([]map[string]any, 0, len(calls))
				for _, c := range calls {
					history = append(history, map[string]any{
						"endpoint": c.Endpoint,
						"method":   c.Method,
						"mode":     c.Mode,
						"outcome":  c.Outcome,
					})
				}
				out["recent_calls"] = history
			}
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal status: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

// mcpDocument renders a dispatcher result: the document as JSON on
// success, the structured error document on failure.
func mcpDocument(doc dispatch.Document, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		var payload dispatch.Document = map[string]any{"error": err.Error()}
		if de, ok := asDispatchError(err); ok {
			payload = de.Document()
		}
		b, merr := json.Marshal(payload)
		if merr != nil {
			return mcpError(err.Error()), nil
		}
		return mcpError(string(b)), nil
	}

	b, merr := json.Marshal(doc)
	if merr != nil {
		return mcpError(fmt.Sprintf("failed to marshal document: %v", merr)), nil
	}
	return mcpText(string(b)), nil
}

func asDispatchError(err error) (*dispatch.Error, bool) {
	var de *dispatch.Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

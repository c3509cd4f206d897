package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/standardbeagle/codesnip/internal/cache"
	"github.com/standardbeagle/codesnip/internal/types"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolInfo documents one tool for the info tool
type ToolInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	Example     string            `json:"example"`
}

// Settings are the matcher tunables currently in effect
type Settings struct {
	MatchLines               int  `json:"match_lines"`
	MaxLineDepth             int  `json:"max_line_depth"`
	CountBooleanKeywords     bool `json:"count_boolean_keywords"`
	EscapeOnHighlightFailure bool `json:"escape_on_highlight_failure"`
	MaxGoroutines            int  `json:"max_goroutines"`
}

// InfoResponse is the info overview
type InfoResponse struct {
	Server            string      `json:"server"`
	Version           string      `json:"version"`
	Root              string      `json:"root"`
	Tools             []string    `json:"tools"`
	Settings          Settings    `json:"settings"`
	Cache             cache.Stats `json:"term_cache"`
	Reloads           int64       `json:"config_reloads"`
	HighlightFailures int64       `json:"highlight_failures"`
	UptimeSeconds     int64       `json:"uptime_seconds"`
	ConfigFallbacks   []string    `json:"config_fallbacks,omitempty"`
}

// NormalizeResponse is the normalize_query output
type NormalizeResponse struct {
	Query    string   `json:"query"`
	Terms    []string `json:"terms"`
	Keywords []string `json:"keywords"`
}

// FormatResponse is the format_snippets output. Results holds only the files
// that produced a snippet.
type FormatResponse struct {
	Query      string              `json:"query"`
	Terms      []string            `json:"terms"`
	Files      int                 `json:"files"`
	Results    []*types.FileResult `json:"results"`
	Skipped    []string            `json:"skipped,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
	DurationMs int64               `json:"duration_ms"`
}

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result with IsError
// set, so the client sees the message instead of a protocol error.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	response, marshalErr := createJSONResponse(map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}

	response.IsError = true
	return response, nil
}

package mcp

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/standardbeagle/codesnip/internal/search"
	"github.com/standardbeagle/codesnip/internal/source"
	"github.com/standardbeagle/codesnip/internal/types"
	"github.com/standardbeagle/codesnip/internal/version"
	"github.com/standardbeagle/codesnip/pkg/pathutil"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InfoParams selects the tool to describe
type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

// NormalizeParams is the normalize_query input
type NormalizeParams struct {
	Query string `json:"query"`
}

// InlineFile is a file passed by content rather than by path
type InlineFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FormatParams is the format_snippets input
type FormatParams struct {
	Query     string       `json:"query"`
	Files     []InlineFile `json:"files,omitempty"`
	Paths     []string     `json:"paths,omitempty"`
	Highlight *bool        `json:"highlight,omitempty"`
}

func (p FormatParams) highlight() bool {
	return p.Highlight == nil || *p.Highlight
}

// toolDocs backs the info tool
var toolDocs = map[string]ToolInfo{
	"normalize_query": {
		Name:        "normalize_query",
		Description: "Split a query into distinct terms, longest first. AND, OR and NOT are kept as written; everything else is lowercased and also split on '.', '(', '-', '<' and '>'.",
		Parameters:  map[string]string{"query": "raw query (required)"},
		Example:     `{"query": "foo.bar(1) AND baz"}`,
	},
	"format_snippets": {
		Name:        "format_snippets",
		Description: "Pick the most relevant lines of each file for a query and render them as escaped HTML with matched terms wrapped in <strong>. Files without a match get their first lines.",
		Parameters: map[string]string{
			"query":     "search query (required)",
			"files":     "inline files: [{path, content}]",
			"paths":     "files or globs under the project root",
			"highlight": "emphasize matched terms (default true)",
		},
		Example: `{"query": "handleRequest", "paths": ["**/*.go"]}`,
	},
	"info": {
		Name:        "info",
		Description: "Describe the server or one tool.",
		Parameters:  map[string]string{"tool": "tool name, or 'version'"},
		Example:     `{"tool": "format_snippets"}`,
	},
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if err := decodeParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("info", fmt.Errorf("invalid parameters: %w", err))
	}

	tool := strings.ToLower(strings.TrimSpace(params.Tool))
	switch tool {
	case "":
		return s.overview()
	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_name":    serverName,
			"server_version": version.FullInfo(),
			"build_id":       version.BuildID(),
			"build":          version.Current(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		})
	}

	doc, ok := toolDocs[tool]
	if !ok {
		return createErrorResponse("info", fmt.Errorf("unknown tool %q", params.Tool))
	}
	return createJSONResponse(doc)
}

func (s *Server) overview() (*mcp.CallToolResult, error) {
	e := s.current.Load()

	return createJSONResponse(&InfoResponse{
		Server:  serverName,
		Version: version.Info(),
		Root:    e.cfg.Project.Root,
		Tools:   []string{"info", "normalize_query", "format_snippets"},
		Settings: Settings{
			MatchLines:               e.matcher.MatchLines(),
			MaxLineDepth:             e.matcher.MaxLineDepth(),
			CountBooleanKeywords:     e.cfg.Matcher.CountBooleanKeywords,
			EscapeOnHighlightFailure: e.cfg.Matcher.EscapeOnHighlightFailure,
			MaxGoroutines:            e.cfg.Performance.MaxGoroutines,
		},
		Cache:              e.matcher.CacheStats(),
		Reloads:            s.reloads.Load(),
		HighlightFailures:  s.logger.Failures(),
		UptimeSeconds:      int64(time.Since(s.started).Seconds()),
		ConfigFallbacks:    errorStrings(e.cfg.Fallbacks),
	})
}

func (s *Server) handleNormalizeQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("normalize_query", func() (*mcp.CallToolResult, error) {
		var params NormalizeParams
		if err := decodeParams(req.Params.Arguments, &params); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}

		terms := s.current.Load().matcher.Terms(params.Query)
		resp := &NormalizeResponse{
			Query:    params.Query,
			Terms:    terms,
			Keywords: []string{},
		}
		for _, term := range terms {
			if search.IsBooleanKeyword(term) {
				resp.Keywords = append(resp.Keywords, term)
			}
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleFormatSnippets(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("format_snippets", func() (*mcp.CallToolResult, error) {
		var params FormatParams
		if err := decodeParams(req.Params.Arguments, &params); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
		if len(params.Files) == 0 && len(params.Paths) == 0 {
			return nil, fmt.Errorf("either files or paths is required")
		}

		e := s.current.Load()
		start := time.Now()

		results := make([]*types.FileResult, 0, len(params.Files))
		for _, f := range params.Files {
			if f.Path == "" {
				return nil, fmt.Errorf("inline file without a path")
			}
			results = append(results, source.FromContent(f.Path, f.Content))
		}

		resp := &FormatResponse{Query: params.Query}
		if len(params.Paths) > 0 {
			batch, err := e.loader.DiscoverAndLoad(ctx, params.Paths)
			if err != nil {
				return nil, err
			}
			root := e.loader.Root()
			results = append(results, pathutil.ToRelativeResults(batch.Results, root)...)
			for _, skipped := range batch.Skipped {
				resp.Skipped = append(resp.Skipped, pathutil.ToRelative(skipped, root))
			}
			resp.Errors = errorStrings(batch.Failed)
		}

		formatted, err := e.matcher.FormatResultsConcurrent(ctx, results, params.Query, params.highlight())
		if err != nil {
			return nil, err
		}

		resp.Terms = e.matcher.Terms(params.Query)
		resp.Files = len(results)
		resp.Results = formatted
		resp.DurationMs = time.Since(start).Milliseconds()
		return createJSONResponse(resp)
	})
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// Package mcp serves the snippet engine to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/codesnip/internal/cache"
	"github.com/standardbeagle/codesnip/internal/config"
	"github.com/standardbeagle/codesnip/internal/diagnostics"
	"github.com/standardbeagle/codesnip/internal/search"
	"github.com/standardbeagle/codesnip/internal/source"
	"github.com/standardbeagle/codesnip/internal/version"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "codesnip-mcp-server"

// engine is everything derived from one configuration. It is replaced as a
// whole when the configuration reloads, never modified.
type engine struct {
	cfg     *config.Config
	matcher *search.Matcher
	loader  *source.Loader
}

// Server exposes the snippet tools
type Server struct {
	server *mcp.Server
	logger *diagnostics.Logger

	// terms survives reloads so cached queries stay warm
	terms   *cache.TermCache
	current atomic.Pointer[engine]
	reloads atomic.Int64
	started time.Time
}

// NewServer creates an MCP server for cfg. Diagnostics go to logger, which
// must not write to stdout.
func NewServer(cfg *config.Config, logger *diagnostics.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mcp server requires a configuration")
	}

	s := &Server{
		logger:  logger,
		terms:   cache.NewTermCache(cfg.Performance.TermCacheSize),
		started: time.Now(),
	}
	s.current.Store(s.newEngine(cfg))

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Info(),
	}, nil)
	s.registerTools()

	logger.Printf("MCP server initialized for %s", cfg.Project.Root)
	return s, nil
}

func (s *Server) newEngine(cfg *config.Config) *engine {
	for _, fallback := range cfg.Fallbacks {
		s.logger.Printf("config: %v", fallback)
	}
	return &engine{
		cfg:     cfg,
		matcher: search.NewMatcherWithCache(cfg, s.logger, s.terms),
		loader:  source.NewLoader(cfg),
	}
}

// Reload swaps in a configuration. Calls already running keep the engine
// they started with.
func (s *Server) Reload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.current.Store(s.newEngine(cfg))
	s.reloads.Add(1)
	s.logger.Printf("Configuration reloaded (match_lines=%d, max_line_depth=%d)",
		cfg.Matcher.MatchLines, cfg.Matcher.MaxLineDepth)
}

// Config returns the active configuration
func (s *Server) Config() *config.Config {
	return s.current.Load().cfg
}

// ConfigSource says which config file to watch and how to rebuild the
// configuration when it changes
type ConfigSource struct {
	File string                         // Explicit config file; empty watches the project root
	Load func() (*config.Config, error) // Nil reloads the watched file as is
}

// WatchConfig reloads the server whenever the watched config file changes.
// It blocks until ctx is done.
func (s *Server) WatchConfig(ctx context.Context, src ConfigSource) error {
	var (
		watcher *config.Watcher
		err     error
	)
	if src.File != "" {
		watcher, err = config.NewFileWatcher(src.File, config.DefaultWatchDebounce)
	} else {
		watcher, err = config.NewWatcher(s.Config().Project.Root, config.DefaultWatchDebounce)
	}
	if err != nil {
		return err
	}
	watcher.SetLoader(src.Load)

	return watcher.Run(ctx, s.Reload, func(err error) {
		s.logger.Errorf("config reload failed: %v", err)
	})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Describe the server and its tools. Use 'info' for an overview or 'info <tool>' for one tool's parameters.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to describe (e.g. 'format_snippets', 'normalize_query', 'version')",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "normalize_query",
		Description: "Split a search query into the deduplicated, longest-first term list used for matching and highlighting.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Raw search query",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleNormalizeQuery)

	s.server.AddTool(&mcp.Tool{
		Name:        "format_snippets",
		Description: "Build highlighted excerpts for files matched by a query. Pass file contents inline, or paths and globs under the project root.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Search query the files matched",
				},
				"files": {
					Type:        "array",
					Description: "Inline files",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"path":    {Type: "string", Description: "Display path"},
							"content": {Type: "string", Description: "File content"},
						},
						Required: []string{"path", "content"},
					},
				},
				"paths": {
					Type:        "array",
					Description: "Files or glob patterns relative to the project root (e.g. '**/*.go')",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"highlight": {
					Type:        "boolean",
					Description: "Emphasize matched terms (default true)",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleFormatSnippets)
}

// recoverFromPanic keeps a failing handler from taking the server down
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("PANIC RECOVERED in %s: %v", operation, r)
			s.logger.Errorf("Stack trace: %s", debug.Stack())

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.logger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
				m.Alloc/1024, m.Sys/1024, m.NumGC)

			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.logger.Errorf("Error in %s: %v", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

// decodeParams unmarshals tool arguments. Missing arguments decode as an
// empty object.
func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// Start serves MCP over stdio until ctx is done or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	s.logger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetHandlerForTesting returns the handler registered for toolName
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case "info":
		return s.handleInfo
	case "normalize_query":
		return s.handleNormalizeQuery
	case "format_snippets":
		return s.handleFormatSnippets
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}

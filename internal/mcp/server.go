// Package mcp exposes the path search engine over the Model Context
// Protocol, so AI agents can query the link graph through tools instead
// of the HTTP API.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wikihop/wikihop/internal/search"
	"github.com/wikihop/wikihop/internal/store"
)

// Server wraps the MCP server around an open graph store.
type Server struct {
	mcpServer    *server.MCPServer
	store        *store.Store
	maxPaths     int
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	DatabasePath string        // Path to the graph database
	MaxPaths     int           // Cap on returned paths (0 = unlimited)
	Tools        []string      // Which tools to expose (empty = all)
	Timeout      time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose.
var DefaultTools = []string{"wh_paths", "wh_resolve", "wh_status"}

// AllTools lists all available tools.
var AllTools = []string{"wh_paths", "wh_resolve", "wh_status"}

// New opens the graph database and builds an MCP server around it.
func New(cfg Config) (*Server, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"wikihop",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		store:        st,
		maxPaths:     cfg.MaxPaths,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			st.Close()
			return nil, fmt.Errorf("register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case "wh_paths":
		return s.registerPathsTool()
	case "wh_resolve":
		return s.registerResolveTool()
	case "wh_status":
		return s.registerStatusTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if the timeout is exceeded.
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "wikihop serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListTools returns the list of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"wh_paths": {
		Name:        "wh_paths",
		Description: "Find every shortest chain of links between two pages. Returns each path as an ordered list of page titles.",
		Parameters: []ParameterSchema{
			{Name: "source", Type: "string", Description: "Title of the start page", Required: true},
			{Name: "target", Type: "string", Description: "Title of the end page", Required: true},
			{Name: "max_paths", Type: "number", Description: "Cap on returned paths (default: server config)"},
		},
	},
	"wh_resolve": {
		Name:        "wh_resolve",
		Description: "Resolve a page title to its canonical page, following redirects. Matching is case-insensitive.",
		Parameters: []ParameterSchema{
			{Name: "title", Type: "string", Description: "Page title to resolve", Required: true},
		},
	},
	"wh_status": {
		Name:        "wh_status",
		Description: "Report graph database statistics: page, link, redirect, and recorded search counts.",
		Parameters:  []ParameterSchema{},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'wikihop call --list' to see available tools)", name)
	}

	switch name {
	case "wh_paths":
		source, _ := args["source"].(string)
		if source == "" {
			return "", fmt.Errorf("source parameter is required")
		}
		target, _ := args["target"].(string)
		if target == "" {
			return "", fmt.Errorf("target parameter is required")
		}
		maxPaths := s.maxPaths
		if m, ok := args["max_paths"].(float64); ok {
			maxPaths = int(m)
		}
		return s.executePaths(ctx, source, target, maxPaths)

	case "wh_resolve":
		title, _ := args["title"].(string)
		if title == "" {
			return "", fmt.Errorf("title parameter is required")
		}
		return s.executeResolve(ctx, title)

	case "wh_status":
		return s.executeStatus(ctx)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) registerPathsTool() error {
	tool := mcp.NewTool("wh_paths",
		mcp.WithDescription("Find every shortest chain of links between two pages. Returns each path as an ordered list of page titles."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Title of the start page"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Title of the end page"),
		),
		mcp.WithNumber("max_paths",
			mcp.Description("Cap on returned paths (default: server config)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handlePaths)
	return nil
}

func (s *Server) registerResolveTool() error {
	tool := mcp.NewTool("wh_resolve",
		mcp.WithDescription("Resolve a page title to its canonical page, following redirects. Matching is case-insensitive."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Page title to resolve"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleResolve)
	return nil
}

func (s *Server) registerStatusTool() error {
	tool := mcp.NewTool("wh_status",
		mcp.WithDescription("Report graph database statistics: page, link, redirect, and recorded search counts."),
	)

	s.mcpServer.AddTool(tool, s.handleStatus)
	return nil
}

func (s *Server) handlePaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	source, ok := args["source"].(string)
	if !ok || source == "" {
		return mcp.NewToolResultError("source parameter is required"), nil
	}
	target, ok := args["target"].(string)
	if !ok || target == "" {
		return mcp.NewToolResultError("target parameter is required"), nil
	}

	maxPaths := s.maxPaths
	if m, ok := args["max_paths"].(float64); ok {
		maxPaths = int(m)
	}

	result, err := s.executePaths(ctx, source, target, maxPaths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title parameter is required"), nil
	}

	result, err := s.executeResolve(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) executePaths(ctx context.Context, source, target string, maxPaths int) (string, error) {
	from, fromRedirected, err := s.store.ResolvePage(ctx, source)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return "", fmt.Errorf("start page %q does not exist", source)
		}
		return "", fmt.Errorf("resolve source: %w", err)
	}

	to, toRedirected, err := s.store.ResolvePage(ctx, target)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return "", fmt.Errorf("end page %q does not exist", target)
		}
		return "", fmt.Errorf("resolve target: %w", err)
	}

	started := time.Now()
	paths, err := search.ShortestPaths(ctx, s.store, from.ID, to.ID)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	pathsFound := len(paths) > 0
	if maxPaths > 0 && len(paths) > maxPaths {
		paths = paths[:maxPaths]
	}

	idSet := make(map[int64]struct{})
	for _, p := range paths {
		for _, id := range p {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	titles, err := s.store.PageTitles(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("load titles: %w", err)
	}

	titled := make([][]string, 0, len(paths))
	for _, p := range paths {
		tp := make([]string, len(p))
		for i, id := range p {
			tp[i] = titles[id]
		}
		titled = append(titled, tp)
	}

	degrees := 0
	if pathsFound {
		degrees = len(paths[0]) - 1
	}

	// Analytics is best effort; a failed insert never fails the call.
	rec := store.SearchRecord{
		SourceID: from.ID,
		TargetID: to.ID,
		Duration: time.Since(started),
		Paths:    paths,
	}
	if err := s.store.RecordSearch(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "wikihop: record search: %v\n", err)
	}

	return toJSON(map[string]interface{}{
		"source":            from.Title,
		"target":            to.Title,
		"source_redirected": fromRedirected,
		"target_redirected": toRedirected,
		"degrees":           degrees,
		"count":             len(titled),
		"paths":             titled,
	})
}

func (s *Server) executeResolve(ctx context.Context, title string) (string, error) {
	page, redirected, err := s.store.ResolvePage(ctx, title)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return "", fmt.Errorf("page %q does not exist", title)
		}
		return "", fmt.Errorf("resolve page: %w", err)
	}

	return toJSON(map[string]interface{}{
		"id":         page.ID,
		"title":      page.Title,
		"redirected": redirected,
	})
}

func (s *Server) executeStatus(ctx context.Context) (string, error) {
	stats, err := s.store.GetStats()
	if err != nil {
		return "", fmt.Errorf("query stats: %w", err)
	}

	return toJSON(map[string]interface{}{
		"database":  s.store.Path(),
		"pages":     stats.PageCount,
		"links":     stats.LinkCount,
		"redirects": stats.RedirectCount,
		"searches":  stats.SearchCount,
	})
}

func toJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

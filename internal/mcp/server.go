package mcp

import (
	"context"
	"database/sql"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/deckhand/internal/config"
)

// toolHandler is a Handlers method serving one tool.
type toolHandler func(*Handlers, context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// tools lists every deck tool in registration order.
var tools = []struct {
	def    mcp.Tool
	handle toolHandler
}{
	{convertToolDef, (*Handlers).HandleConvert},
	{storeToolDef, (*Handlers).HandleStore},
	{fetchToolDef, (*Handlers).HandleFetch},
	{listToolDef, (*Handlers).HandleList},
	{deleteToolDef, (*Handlers).HandleDelete},
	{purgeToolDef, (*Handlers).HandlePurge},
	{importToolDef, (*Handlers).HandleImport},
	{exportToolDef, (*Handlers).HandleExport},
}

// AllToolNames returns the tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.def.Name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns the entries of names that are not tools.
func ValidateDisabledTools(names []string) []string {
	known := AllToolNames()
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := slices.BinarySearch(known, name); !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer builds the MCP server, skipping any tool named in
// cfg.DisabledTools.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer("deckhand", version, server.WithToolCapabilities(true))
	h := NewHandlers(db, cfg)

	for _, t := range tools {
		if slices.Contains(cfg.DisabledTools, t.def.Name) {
			continue
		}
		handle := t.handle
		s.AddTool(t.def, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handle(h, ctx, req)
		})
	}
	return s
}

// Run serves the deck tools over stdio until stdin closes.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(db, cfg, version))
}

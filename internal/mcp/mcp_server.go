// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the dtreport MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Dependency-Track Report Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("get_monthly_report",
		mcp.WithDescription("Average the vulnerability metrics of Dependency-Track projects per calendar month. Rows are ordered by month, then project name."),
		mcp.WithString("project_filter", mcp.Description("Comma-separated project names or UUIDs. Empty means all projects.")),
		mcp.WithBoolean("fill_gaps", mcp.Description("Repeat the latest known metrics for months without a BOM import.")),
		mcp.WithString("version_match", mcp.Description("Regular expression project versions must match. Empty means all versions.")),
		mcp.WithNumber("not_before_days", mcp.Description("Ignore BOM imports older than this many days.")),
		mcp.WithNumber("not_after_days", mcp.Description("Ignore BOM imports newer than this many days.")),
	), h.handleGetMonthlyReport)

	s.AddTool(mcp.NewTool("get_cache_status",
		mcp.WithDescription("Show the state of the project snapshot cache."),
	), h.handleGetCacheStatus)

	return s
}

// StartMCPServer starts the dtreport MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}

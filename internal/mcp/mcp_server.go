// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repometrics/core/pipeline"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repometrics MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newServer(&toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		client:  contract.NewLocalGitClient(),
		fallback: func(cfg *contract.Config) contract.CoverageClient {
			return pipeline.NewGitLabClientFromConfig(cfg)
		},
	})
}

func newServer(h *toolHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"Repository Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	s.AddTool(mcp.NewTool("scan_project_metrics",
		mcp.WithDescription("Scan a repository and report lines of code, churn, commits, authors and coverage for the root and each project."),
		mcp.WithString("repo_path", mcp.Description("Path to the scan root (defaults to the server's configured root).")),
		mcp.WithString("projects", mcp.Description("Comma separated project paths relative to the root. Discovered when omitted.")),
		mcp.WithString("since", mcp.Description("History window handed to git (e.g. '6 months ago', '2025-01-01').")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of projects returned after the root.")),
	), h.handleScanProjectMetrics)

	s.AddTool(mcp.NewTool("get_file_metrics",
		mcp.WithDescription("List per-file metrics under a path, ordered by churn."),
		mcp.WithString("repo_path", mcp.Description("Path to the scan root.")),
		mcp.WithString("path", mcp.Description("Sub path relative to the root. Defaults to the whole tree.")),
		mcp.WithString("filter", mcp.Description("Case-insensitive substring the file path must contain.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results.")),
	), h.handleGetFileMetrics)

	s.AddTool(mcp.NewTool("get_heuristic_coverage",
		mcp.WithDescription("Estimate unit test coverage for a path from test references, falling back to the latest CI pipeline."),
		mcp.WithString("path", mcp.Description("Sub path relative to the root."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the scan root.")),
	), h.handleGetHeuristicCoverage)

	return s
}

// StartMCPServer starts the repometrics MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

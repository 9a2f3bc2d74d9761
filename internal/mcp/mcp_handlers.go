package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	mgr      contract.CacheManager
	client   contract.GitClient
	fallback func(cfg *contract.Config) contract.CoverageClient
}

// requestConfig clones the base config and applies the arguments every tool
// shares.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid repo_path: %w", err)
		}
		cfg.RepoPath = abs
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	sub, err := contract.NormalizeSubPath(cfg.RepoPath, request.GetString("path", ""))
	if err != nil {
		return nil, err
	}
	cfg.SubPath = sub
	return cfg, nil
}

func (h *toolHandler) coverageClient(cfg *contract.Config) contract.CoverageClient {
	if h.fallback == nil {
		return nil
	}
	return h.fallback(cfg)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleScanProjectMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if s := request.GetString("since", ""); s != "" {
		cfg.Since, cfg.SinceTime = contract.ResolveSince(s, time.Now(), cfg.SinceGranularity())
	}
	if p := request.GetString("projects", ""); p != "" {
		cfg.Projects = nil
		for _, project := range contract.SplitList(p) {
			normalized, err := contract.NormalizeSubPath("", project)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid project %q: %v", project, err)), nil
			}
			cfg.Projects = append(cfg.Projects, normalized)
		}
	}

	result := core.RunScan(ctx, cfg, h.client, h.mgr, h.coverageClient(cfg))
	return jsonResult(core.LimitProjects(result.Projects, cfg.ResultLimit))
}

func (h *toolHandler) handleGetFileMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.PathFilter = request.GetString("filter", "")

	files := core.GetFiles(ctx, cfg, h.client, h.mgr)
	return jsonResult(files)
}

func (h *toolHandler) handleGetHeuristicCoverage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetString("path", "") == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report := core.GetCoverageReport(ctx, cfg, h.client, h.mgr, h.coverageClient(cfg))
	return jsonResult(report)
}

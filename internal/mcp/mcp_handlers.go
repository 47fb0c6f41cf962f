package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elomagic/dtreport/core"
	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleGetMonthlyReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	versionMatch := ""
	if cfg.VersionMatch != nil {
		versionMatch = cfg.VersionMatch.String()
	}
	err := contract.RevalidateFilters(cfg,
		request.GetString("project_filter", strings.Join(cfg.ProjectFilter, ",")),
		request.GetString("version_match", versionMatch),
		request.GetInt("not_before_days", cfg.NotBeforeDays),
		request.GetInt("not_after_days", cfg.NotAfterDays),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}
	cfg.FillGaps = request.GetBool("fill_gaps", cfg.FillGaps)

	source, err := core.ResolveSource(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}
	rows, err := core.GetReportRows(ctx, cfg, source, time.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteJSONReport(&buf, rows); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *toolHandler) handleGetCacheStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetSnapshotStore() == nil {
		return mcp.NewToolResultError("snapshot cache is not initialized"), nil
	}
	status, err := h.mgr.GetSnapshotStore().GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cache status failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

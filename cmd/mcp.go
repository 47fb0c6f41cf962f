package cmd

import (
	"github.com/elomagic/dtreport/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the dtreport MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents request monthly reports via standard tools.

Tools:
  get_monthly_report - ordered report rows as JSON
  get_cache_status   - snapshot cache statistics`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}

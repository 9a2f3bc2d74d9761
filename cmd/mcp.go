package cmd

import (
	"github.com/huangsam/repometrics/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [root]",
	Short: "Start the repometrics MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents scan the root through
the scan_project_metrics, get_file_metrics and get_heuristic_coverage tools.

Flags and config act as defaults for every tool call.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

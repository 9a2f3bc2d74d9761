package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/spf13/cobra"
)

// scanCmd reports per-project metrics for a source tree.
var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Report size, churn, authors and coverage for each project.",
	Long: `Walk the root, count lines of code in source files and join them with
Git history since --since. Every Git working copy under the root contributes its
own history, so multi-repository workspaces are scanned in one pass.

The first row always covers the whole root. The following rows cover each
project, either given with --project or discovered up to --project-depth.

Coverage is a heuristic: the share of public methods in non-test files that are
referenced by name from test files. When a project has no heuristic estimate,
the latest GitLab pipeline coverage for its remote is used instead.

Examples:
  # Scan the current directory over the last day
  repometrics scan

  # Scan two projects over the last quarter with the author breakdown
  repometrics scan ~/src/shop --project api --project web --since "3 months ago" --detail

  # Record the result for trend tracking
  repometrics scan --save

  # Export as JSON
  repometrics scan --output json --output-file metrics.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteScan(rootCtx, cfg, cacheManager)
	},
}

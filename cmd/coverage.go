package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/spf13/cobra"
)

// coverageCmd explains the coverage estimate of one directory.
var coverageCmd = &cobra.Command{
	Use:   "coverage [root]",
	Short: "Explain the coverage estimate for a directory.",
	Long: `Estimate test coverage for --path and show how the number was reached.

The heuristic collects public methods from non-test source files and counts
how many of their names appear in test files. Files whose name contains the
test indicator (default "Test") are test files. Only languages with a method
matcher (C# and Java) contribute methods.

The latest GitLab pipeline coverage is shown alongside when the remote is a
GitLab project and a token is configured (GITLAB_TOKEN).

Examples:
  # Coverage of a single project
  repometrics coverage --path services/billing

  # Use the tree-sitter matcher and list every unreferenced method
  repometrics coverage --path services/billing --matcher treesitter --detail`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: localSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteCoverage(rootCtx, cfg, cacheManager)
	},
}

package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/spf13/cobra"
)

// filesCmd lists per-file records ordered by churn.
var filesCmd = &cobra.Command{
	Use:   "files [root]",
	Short: "Show the files with the most churn.",
	Long: `List source files with their line count, churn, commits and authors,
ordered by churn (additions plus deletions since --since).

Use --path to restrict the listing to a directory and --filter to keep only
paths containing some text.

Examples:
  # Top files across the whole tree
  repometrics files --limit 20

  # Files under the api project with author details
  repometrics files --path services/api --detail

  # Only handler files, as CSV
  repometrics files --filter handler --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: localSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteFiles(rootCtx, cfg, cacheManager)
	},
}

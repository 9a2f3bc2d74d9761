// Package cmd defines the command-line interface for repometrics.
package cmd

import (
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("since", contract.DefaultSince, "History window handed to git log --since (e.g. '2 weeks ago', 2024-01-31)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-author breakdowns and full method lists")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("extensions", "", "Comma-separated source extensions to count (default: common languages)")
	rootCmd.PersistentFlags().String("skip-dirs", "", "Comma-separated directory names never descended into")
	rootCmd.PersistentFlags().String("test-indicator", contract.DefaultTestIndicator, "Case-insensitive file name marker for test files")
	rootCmd.PersistentFlags().String("matcher", string(schema.RegexMatcher), "Method declaration matcher: regex or treesitter")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for snapshots (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("coverage-timeout", "", "Timeout for the GitLab pipeline coverage request (e.g. 10s)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scanCmd to Viper
	scanCmd.Flags().StringSliceP("project", "p", nil, "Project path relative to the root (repeatable; discovered when omitted)")
	scanCmd.Flags().Int("project-depth", 1, "Directory depth searched for projects when none are given (0 = unlimited)")
	scanCmd.Flags().String("remote-url", "", "Remote URL used for the pipeline coverage fallback (default: detected)")
	scanCmd.Flags().Bool("save", false, "Record the scan in the snapshot store")
	if err := viper.BindPFlags(scanCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scan flags", err)
	}

	// files and coverage share --path, so their flags are bound when they run
	filesCmd.Flags().StringP("filter", "f", "", "Keep files whose path contains this text (case-insensitive)")
	filesCmd.Flags().String("path", "", "Restrict results to this directory")
	coverageCmd.Flags().String("path", "", "Directory to estimate coverage for")

	// Bind all flags of snapshotMigrateCmd to Viper
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}

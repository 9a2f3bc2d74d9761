// Package core ties the scanners together into the scan, files and coverage
// commands.
package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/repometrics/core/coverage"
	"github.com/huangsam/repometrics/core/pipeline"
	"github.com/huangsam/repometrics/core/slice"
	"github.com/huangsam/repometrics/core/walker"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/outwriter"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
)

// ExecutorFunc defines the function signature for executing different scan modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteScan scans the repository, prints per-project metrics and, with
// cfg.Save, appends the result to the snapshot store.
func ExecuteScan(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	result := RunScan(ctx, cfg, client, mgr, pipeline.NewGitLabClientFromConfig(cfg))

	if cfg.Save && mgr != nil {
		runID, err := RecordSnapshots(mgr.GetSnapshotStore(), result, start)
		if err != nil {
			contract.LogWarn("Failed to record snapshots", err)
		} else if runID != "" {
			log.Info().Str("run", runID).Int("projects", len(result.Projects)).Msg("Recorded snapshots")
		}
	}

	duration := time.Since(start)
	return outwriter.PrintProjects(LimitProjects(result.Projects, cfg.ResultLimit), cfg, duration)
}

// ExecuteFiles scans the repository and prints the per-file records under
// cfg.SubPath, ordered by churn.
func ExecuteFiles(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	files := GetFiles(ctx, cfg, contract.NewLocalGitClient(), mgr)
	duration := time.Since(start)
	return outwriter.PrintFiles(files, cfg, duration)
}

// ExecuteCoverage scans the repository and explains the coverage resolved for
// cfg.SubPath.
func ExecuteCoverage(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report := GetCoverageReport(ctx, cfg, contract.NewLocalGitClient(), mgr, pipeline.NewGitLabClientFromConfig(cfg))
	duration := time.Since(start)
	return outwriter.PrintCoverage(report, cfg, duration)
}

// GetFiles scans the repository and ranks the files under cfg.SubPath.
func GetFiles(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) []*schema.FileRecord {
	data := walker.Scan(ctx, cfg, client, mgr)
	return RankFiles(data, cfg.SubPath, cfg.PathFilter, cfg.ResultLimit)
}

// GetCoverageReport scans the repository and resolves coverage for
// cfg.SubPath. A nil fallback skips the pipeline lookup.
func GetCoverageReport(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, fallback contract.CoverageClient) schema.CoverageReport {
	info := resolveRepoInfo(ctx, cfg, client)
	data := walker.Scan(ctx, cfg, client, mgr)
	if fallback != nil && info.RemoteURL != "" {
		data.Coverage = fallback.LatestCoverage(ctx, info.RemoteURL)
	}
	return BuildCoverageReport(data, cfg.SubPath, coverage.NewHeuristicFromConfig(cfg))
}

// RankFiles returns the records under subPath whose path contains filter,
// ordered by churn then commits descending, then path. A positive limit caps
// the result.
func RankFiles(data *schema.RepoData, subPath, filter string, limit int) []*schema.FileRecord {
	var files []*schema.FileRecord
	for _, f := range slice.Files(data, subPath) {
		if filter != "" && !containsFold(f.Path, filter) {
			continue
		}
		files = append(files, f)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Churn != files[j].Churn {
			return files[i].Churn > files[j].Churn
		}
		if files[i].CommitCount != files[j].CommitCount {
			return files[i].CommitCount > files[j].CommitCount
		}
		return files[i].Path < files[j].Path
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files
}

// BuildCoverageReport runs the heuristic for subPath and records which source
// the effective number came from.
func BuildCoverageReport(data *schema.RepoData, subPath string, h *coverage.Heuristic) schema.CoverageReport {
	result := h.Analyze(data, subPath)
	metrics := slice.Slice(data, subPath, analyzed{result})
	report := schema.CoverageReport{
		Path:           metrics.Path,
		Coverage:       metrics.Coverage,
		CoverageSource: metrics.CoverageSource,
		Pipeline:       data.Coverage,
		SourceFiles:    result.SourceFiles,
		TestFiles:      result.TestFiles,
		TotalMethods:   result.Total,
		CoveredMethods: result.Covered,
		Uncovered:      result.Uncovered,
	}
	if result.Defined() {
		pct := result.Percentage()
		report.Heuristic = &pct
	}
	return report
}

// analyzed serves a precomputed heuristic result to slice.Slice.
type analyzed struct {
	result coverage.Result
}

func (a analyzed) Estimate(_ *schema.RepoData, _ string) *float64 {
	if !a.result.Defined() {
		return nil
	}
	pct := a.result.Percentage()
	return &pct
}

// LimitProjects keeps the root row and at most limit projects after it.
func LimitProjects(projects []schema.ProjectMetrics, limit int) []schema.ProjectMetrics {
	if limit <= 0 || len(projects) <= limit+1 {
		return projects
	}
	return projects[:limit+1]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repometrics/core/coverage"
	"github.com/huangsam/repometrics/core/remote"
	"github.com/huangsam/repometrics/core/slice"
	"github.com/huangsam/repometrics/core/walker"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ScanResult is everything one scan produced.
type ScanResult struct {
	Data     *schema.RepoData
	Info     remote.RepoInfo
	Projects []schema.ProjectMetrics // Root first, then projects in discovery order
}

// RunScan walks cfg.RepoPath once and slices the result into the root plus
// every configured or discovered project. The pipeline lookup runs alongside
// the walk; a nil fallback skips it.
func RunScan(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, fallback contract.CoverageClient) *ScanResult {
	info := resolveRepoInfo(ctx, cfg, client)

	var (
		data     *schema.RepoData
		pipeline *float64
	)
	g, gctx := errgroup.WithContext(ctx)
	if fallback != nil && info.RemoteURL != "" {
		g.Go(func() error {
			pipeline = fallback.LatestCoverage(gctx, info.RemoteURL)
			return nil
		})
	}
	g.Go(func() error {
		data = walker.Scan(gctx, cfg, client, mgr)
		return nil
	})
	_ = g.Wait()
	data.Coverage = pipeline

	projects := cfg.Projects
	if len(projects) == 0 {
		projects = remote.DiscoverProjects(cfg.RepoPath, cfg.ProjectDepth)
	}

	return &ScanResult{
		Data:     data,
		Info:     info,
		Projects: sliceProjects(ctx, cfg, data, projects),
	}
}

// resolveRepoInfo prefers an explicit remote URL over detection.
func resolveRepoInfo(ctx context.Context, cfg *contract.Config, client contract.GitClient) remote.RepoInfo {
	if cfg.RemoteURL != "" {
		return remote.RepoInfo{
			GitRoot:   cfg.RepoPath,
			RemoteURL: cfg.RemoteURL,
			Kind:      remote.Classify(cfg.RemoteURL, cfg.GitLabHost),
		}
	}
	return remote.Detect(ctx, client, cfg.RepoPath, cfg.GitLabHost)
}

// sliceProjects builds metrics for the root and each project concurrently.
// Slicing only reads data, so every goroutine owns its own output slot.
func sliceProjects(ctx context.Context, cfg *contract.Config, data *schema.RepoData, projects []string) []schema.ProjectMetrics {
	estimator := coverage.NewHeuristicFromConfig(cfg)
	paths := append([]string{""}, projects...)
	out := make([]schema.ProjectMetrics, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = slice.Slice(data, p, estimator)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("root", data.Root).Msg("project slicing interrupted")
	}
	return out
}

// RecordSnapshots appends one sync run holding every project of result to
// store. The run ends as idle, or as error when any project failed to record.
// A nil store records nothing.
func RecordSnapshots(store contract.SnapshotStore, result *ScanResult, now time.Time) (string, error) {
	if store == nil || result == nil || result.Data == nil {
		return "", nil
	}
	runID, err := store.BeginRun(result.Data.Root, result.Data.Since, now)
	if err != nil {
		return "", fmt.Errorf("failed to begin sync run: %w", err)
	}

	var runErr error
	recorded := 0
	for _, m := range result.Projects {
		if err := store.RecordProject(runID, now, m); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("project %s: %w", m.Path, err))
			continue
		}
		recorded++
	}

	if err := store.EndRun(runID, time.Now(), recorded, runErr); err != nil {
		return runID, errors.Join(runErr, fmt.Errorf("failed to end sync run %s: %w", runID, err))
	}
	return runID, runErr
}

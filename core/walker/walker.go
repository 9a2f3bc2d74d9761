// Package walker builds a RepoData for a directory tree that may hold any
// number of independent git working copies.
package walker

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/huangsam/repometrics/core/loc"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// discoverySkipDirs are never searched for nested working copies.
var discoverySkipDirs = map[string]struct{}{
	"node_modules": {},
	"bin":          {},
	"obj":          {},
	"dist":         {},
}

// Scan counts lines across cfg.RepoPath, extracts history for every nested git
// root and merges both into one dataset keyed by forward-slash path relative
// to the scan root. Failures are logged per root and never abort the walk.
// The returned RepoData is not modified afterwards.
func Scan(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *schema.RepoData {
	data := schema.NewRepoData(cfg.RepoPath, cfg.Since)
	roots := DiscoverRoots(ctx, cfg.RepoPath)
	data.Roots = roots

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}

	// Each goroutine owns one slot, so no locking is needed before the merge.
	var counts map[string]int
	histories := make([]map[string]*schema.FileRecord, len(roots))

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))

	g.Go(func() error {
		counts = loc.Count(ctx, cfg.RepoPath, loc.Options{
			Extensions: cfg.Extensions,
			SkipDirs:   cfg.SkipDirs,
			Workers:    cfg.Workers,
		})
		return nil
	})
	for i, rel := range roots {
		g.Go(func() error {
			rootPath := filepath.Join(cfg.RepoPath, filepath.FromSlash(rel))
			histories[i] = cachedExtract(ctx, cfg, client, store, rootPath)
			log.Debug().Str("root", rootPath).Int("files", len(histories[i])).Msg("Extracted history")
			return nil
		})
	}
	_ = g.Wait()

	for p, n := range counts {
		rec := schema.NewFileRecord(p)
		rec.LinesOfCode = n
		data.Files[p] = rec
	}
	for i, rel := range roots {
		mergeHistory(data, rel, histories[i])
	}
	return data
}

// mergeHistory rebases records from the root at rel onto the scan root and
// adds them to data.
func mergeHistory(data *schema.RepoData, rel string, records map[string]*schema.FileRecord) {
	for p, rec := range records {
		full := contract.NormalizePath(filepath.Join(filepath.FromSlash(rel), filepath.FromSlash(p)))
		existing, ok := data.Files[full]
		if !ok {
			existing = schema.NewFileRecord(full)
			data.Files[full] = existing
		}
		existing.Merge(rec)
	}
}

// DiscoverRoots returns every directory under root that contains a .git entry,
// as forward-slash paths relative to root ("" for root itself). The search
// continues below a discovered root but never enters a .git directory.
func DiscoverRoots(ctx context.Context, root string) []string {
	var roots []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry during discovery")
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == ".git" {
			rel, relErr := filepath.Rel(root, filepath.Dir(path))
			if relErr == nil {
				roots = append(roots, contract.NormalizePath(rel))
			}
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() && path != root {
			if _, skip := discoverySkipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
		}
		return nil
	})
	return roots
}

// Package loc counts non-blank lines of source files under a directory.
package loc

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/rs/zerolog/log"
)

// Options controls which files are counted.
type Options struct {
	Extensions []string // Allow-list, compared case-insensitively with a leading dot
	SkipDirs   []string // Directory names never descended into
	Workers    int
}

// DefaultOptions returns the stock extension and directory lists.
func DefaultOptions() Options {
	return Options{
		Extensions: contract.DefaultExtensions,
		SkipDirs:   contract.DefaultSkipDirs,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

type lineCount struct {
	path  string
	lines int
	ok    bool
}

// Count walks root and returns the number of non-blank lines for every file
// whose extension is allowed, keyed by forward-slash path relative to root.
// A missing root yields an empty map. Unreadable entries are skipped.
func Count(ctx context.Context, root string, opts Options) map[string]int {
	files := collect(ctx, root, opts)
	counts := make(map[string]int, len(files))
	if len(files) == 0 {
		return counts
	}

	workers := max(opts.Workers, 1)
	fileCh := make(chan string, len(files))
	resultCh := make(chan lineCount, len(files))
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for rel := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				n, ok := countFile(filepath.Join(root, filepath.FromSlash(rel)))
				resultCh <- lineCount{path: rel, lines: n, ok: ok}
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	wg.Wait()
	close(resultCh)

	for r := range resultCh {
		if r.ok {
			counts[r.path] = r.lines
		}
	}
	return counts
}

// collect lists candidate files. Errors on a single entry prune only that entry.
func collect(ctx context.Context, root string, opts Options) []string {
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	skip := make(map[string]struct{}, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = struct{}{}
	}

	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, ok := skip[d.Name()]; ok && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := exts[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		files = append(files, contract.NormalizePath(rel))
		return nil
	})
	return files
}

// countFile returns the non-blank line count and false when the file cannot
// be read as text.
func countFile(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable file")
		return 0, false
	}
	if !utf8.Valid(content) {
		log.Debug().Str("path", path).Msg("Skipping non-text file")
		return 0, false
	}
	return CountLines(content), true
}

// CountLines returns the number of lines whose trimmed content is non-empty.
func CountLines(content []byte) int {
	n := 0
	for line := range bytes.SplitSeq(content, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}

package remote

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/rs/zerolog/log"
)

// projectSkipDirs are directory names that never denote a project.
var projectSkipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	"coverage":     {},
	".idea":        {},
	".vscode":      {},
}

// DiscoverProjects lists directories below root as forward-slash relative
// paths, parents before children. maxDepth limits how far it descends, with
// 1 meaning immediate subdirectories only and 0 meaning no limit. Hidden and
// tooling directories are skipped along with everything below them.
func DiscoverProjects(root string, maxDepth int) []string {
	var projects []string
	var walk func(dir, rel string, depth int)
	walk = func(dir, rel string, depth int) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Debug().Err(err).Str("path", dir).Msg("Skipping unreadable directory")
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if _, skip := projectSkipDirs[name]; skip || strings.HasPrefix(name, ".") {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			childRel := contract.NormalizePath(filepath.Join(rel, name))
			projects = append(projects, childRel)
			if maxDepth == 0 || depth < maxDepth {
				walk(filepath.Join(dir, name), childRel, depth+1)
			}
		}
	}
	walk(root, "", 1)
	return projects
}

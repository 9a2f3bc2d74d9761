// Package coverage estimates unit test coverage without running any tests.
//
// The estimate pairs declared public methods in source files with plain text
// references in test files. It over-counts short or common names and misses
// calls made through interfaces or reflection.
package coverage

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/repometrics/core/slice"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
)

// Heuristic estimates coverage for a sub path of a scanned tree.
type Heuristic struct {
	matchers      map[string]Matcher // Keyed by lower-case extension with leading dot
	testIndicator string
}

var _ slice.CoverageEstimator = &Heuristic{} // Compile-time check

// NewHeuristic creates a heuristic classifying files whose path contains
// testIndicator as tests.
func NewHeuristic(testIndicator string, matchers map[string]Matcher) *Heuristic {
	if testIndicator == "" {
		testIndicator = contract.DefaultTestIndicator
	}
	normalized := make(map[string]Matcher, len(matchers))
	for ext, m := range matchers {
		normalized[strings.ToLower(ext)] = m
	}
	return &Heuristic{matchers: normalized, testIndicator: testIndicator}
}

// NewHeuristicFromConfig builds a heuristic from the validated config.
func NewHeuristicFromConfig(cfg *contract.Config) *Heuristic {
	return NewHeuristic(cfg.TestIndicator, MatchersFor(cfg.Matcher))
}

// sourceFile is a readable in-scope file with a registered matcher.
type sourceFile struct {
	path    string
	content []byte
	matcher Matcher
}

// Estimate implements slice.CoverageEstimator. See Result.Defined for when
// it returns nil.
func (h *Heuristic) Estimate(data *schema.RepoData, subPath string) *float64 {
	result := h.Analyze(data, subPath)
	if !result.Defined() {
		return nil
	}
	pct := result.Percentage()
	return &pct
}

// Result is the breakdown behind an estimate.
type Result struct {
	HasSources  bool     `json:"has_sources"`
	SourceFiles int      `json:"source_files"`
	TestFiles   int      `json:"test_files"`
	Total       int      `json:"total_methods"`
	Covered     int      `json:"covered_methods"`
	Uncovered   []string `json:"uncovered_methods,omitempty"` // As "path:method"
}

// Defined reports whether the result carries a coverage number. There is
// none without source files, nor when sources declare no methods and no
// tests exist. Declared methods that no test mentions give 0.
func (r Result) Defined() bool {
	if !r.HasSources {
		return false
	}
	return r.Total > 0 || r.TestFiles > 0
}

// Percentage returns covered / total * 100 rounded to two decimals, or 0
// when no methods were found.
func (r Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return math.Round(float64(r.Covered)/float64(r.Total)*100*100) / 100
}

// Analyze partitions in-scope files into sources and tests and checks every
// declared method name against the concatenated test text.
func (h *Heuristic) Analyze(data *schema.RepoData, subPath string) Result {
	var result Result
	if data == nil {
		return result
	}

	var sources []sourceFile
	var tests [][]byte
	for _, rec := range slice.Files(data, subPath) {
		m, ok := h.matchers[strings.ToLower(filepath.Ext(rec.Path))]
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(data.Root, filepath.FromSlash(rec.Path)))
		if err != nil {
			log.Debug().Err(err).Str("path", rec.Path).Msg("Skipping unreadable file")
			continue
		}
		if strings.Contains(rec.Path, h.testIndicator) {
			tests = append(tests, content)
		} else {
			sources = append(sources, sourceFile{path: rec.Path, content: content, matcher: m})
		}
	}

	result.SourceFiles = len(sources)
	result.TestFiles = len(tests)
	result.HasSources = len(sources) > 0
	if !result.HasSources {
		return result
	}

	corpus := bytes.Join(tests, []byte("\n"))
	for _, src := range sources {
		decl := src.matcher.Match(src.content)
		for _, name := range decl.Methods {
			// Constructor heuristic
			if name == decl.TypeName {
				continue
			}
			result.Total++
			if bytes.Contains(corpus, []byte(name)) {
				result.Covered++
			} else {
				result.Uncovered = append(result.Uncovered, src.path+":"+name)
			}
		}
	}
	return result
}

// Package slice derives project level metrics from a scanned RepoData.
package slice

import (
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// CoverageEstimator produces a coverage percentage for a sub path, or nil
// when it has nothing to say about it.
type CoverageEstimator interface {
	Estimate(data *schema.RepoData, subPath string) *float64
}

// Files returns the records at or below subPath. Both "" and "." denote the
// scan root. Matching is on whole path segments.
func Files(data *schema.RepoData, subPath string) []*schema.FileRecord {
	prefix := contract.NormalizePath(subPath)
	var out []*schema.FileRecord
	for _, p := range schema.SortedPaths(data) {
		if contract.MatchesPrefix(p, prefix) {
			out = append(out, data.Files[p])
		}
	}
	return out
}

// Slice sums the metrics of every file at or below subPath and re-aggregates
// author contributions across them. Coverage comes from estimator when it
// returns a value, else from the tree-wide fallback on data.
func Slice(data *schema.RepoData, subPath string, estimator CoverageEstimator) schema.ProjectMetrics {
	prefix := contract.NormalizePath(subPath)
	metrics := schema.ProjectMetrics{
		Path:           prefix,
		CoverageSource: schema.NoCoverage,
	}
	if prefix == "" {
		metrics.Path = schema.RootPath
	}
	if data == nil {
		return metrics
	}

	authors := make(map[string]*schema.AuthorContribution)
	for _, rec := range Files(data, prefix) {
		metrics.FileCount++
		metrics.LinesOfCode += rec.LinesOfCode
		metrics.Churn += rec.Churn
		metrics.CommitCount += rec.CommitCount
		for identity, contrib := range rec.Authors {
			agg, ok := authors[identity]
			if !ok {
				agg = &schema.AuthorContribution{Identity: identity}
				authors[identity] = agg
			}
			agg.Additions += contrib.Additions
			agg.Deletions += contrib.Deletions
			agg.CommitCount += contrib.CommitCount
		}
	}
	metrics.Authors = schema.FlattenAuthors(authors)

	if estimator != nil {
		if v := estimator.Estimate(data, prefix); v != nil {
			metrics.Coverage = v
			metrics.CoverageSource = schema.HeuristicCoverage
			return metrics
		}
	}
	if data.Coverage != nil {
		v := *data.Coverage
		metrics.Coverage = &v
		metrics.CoverageSource = schema.PipelineCoverage
	}
	return metrics
}

package schema

import (
	"fmt"
	"sort"
	"strings"
)

// SortAuthors orders contributions by churn descending, then commit count
// descending, then identity ascending so output is deterministic.
func SortAuthors(authors []AuthorContribution) {
	sort.SliceStable(authors, func(i, j int) bool {
		ci, cj := authors[i].Churn(), authors[j].Churn()
		if ci != cj {
			return ci > cj
		}
		if authors[i].CommitCount != authors[j].CommitCount {
			return authors[i].CommitCount > authors[j].CommitCount
		}
		return authors[i].Identity < authors[j].Identity
	})
}

// FlattenAuthors converts a per-file author map into a sorted slice.
func FlattenAuthors(authors map[string]*AuthorContribution) []AuthorContribution {
	out := make([]AuthorContribution, 0, len(authors))
	for _, a := range authors {
		if a == nil {
			continue
		}
		out = append(out, *a)
	}
	SortAuthors(out)
	return out
}

// FormatAuthors formats the first n identities of an already sorted list.
func FormatAuthors(authors []AuthorContribution, n int) string {
	if len(authors) == 0 {
		return ""
	}
	if n <= 0 || n > len(authors) {
		n = len(authors)
	}
	names := make([]string, 0, n)
	for _, a := range authors[:n] {
		names = append(names, a.Identity)
	}
	out := strings.Join(names, ", ")
	if rest := len(authors) - n; rest > 0 {
		out += fmt.Sprintf(" (+%d)", rest)
	}
	return out
}

// FormatCoverage renders an optional coverage value, using "-" when absent.
func FormatCoverage(coverage *float64, precision int) string {
	if coverage == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f%%", precision, *coverage)
}

// SortedPaths returns the file keys of data in lexical order.
func SortedPaths(data *RepoData) []string {
	if data == nil {
		return nil
	}
	paths := make([]string, 0, len(data.Files))
	for p := range data.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

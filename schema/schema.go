// Package schema has models and constants shared by all parts of repometrics.
package schema

// UnknownAuthor is the identity used when git cannot report an author email.
const UnknownAuthor = "unknown"

// RootPath is the project path reported for the scan root itself.
const RootPath = "."

// AuthorContribution is the aggregate of one author's edits, scoped either to a
// single file or rolled up to a whole project.
type AuthorContribution struct {
	Identity    string `json:"identity" yaml:"identity"` // Version-control email, as reported by git
	Additions   int    `json:"additions" yaml:"additions"`
	Deletions   int    `json:"deletions" yaml:"deletions"`
	CommitCount int    `json:"commit_count" yaml:"commit_count"`
}

// Churn returns additions plus deletions.
func (a AuthorContribution) Churn() int {
	return a.Additions + a.Deletions
}

// FileRecord holds the metrics for one source file relative to the scan root.
// Churn always equals Additions + Deletions; AddChange and Merge are the only mutators.
type FileRecord struct {
	Path        string                         `json:"path" yaml:"path"`
	LinesOfCode int                            `json:"lines_of_code" yaml:"lines_of_code"`
	Churn       int                            `json:"churn" yaml:"churn"`
	Additions   int                            `json:"additions" yaml:"additions"`
	Deletions   int                            `json:"deletions" yaml:"deletions"`
	CommitCount int                            `json:"commit_count" yaml:"commit_count"`
	Authors     map[string]*AuthorContribution `json:"authors" yaml:"authors"`
}

// NewFileRecord returns an empty record for path.
func NewFileRecord(path string) *FileRecord {
	return &FileRecord{
		Path:    path,
		Authors: make(map[string]*AuthorContribution),
	}
}

// AddChange records one numstat entry. newCommit is true the first time a
// given commit touches this file, so CommitCount counts commits, not hunks.
func (f *FileRecord) AddChange(identity string, additions, deletions int, newCommit bool) {
	if identity == "" {
		identity = UnknownAuthor
	}
	f.Additions += additions
	f.Deletions += deletions
	f.Churn = f.Additions + f.Deletions

	author, ok := f.Authors[identity]
	if !ok {
		author = &AuthorContribution{Identity: identity}
		f.Authors[identity] = author
	}
	author.Additions += additions
	author.Deletions += deletions
	if newCommit {
		f.CommitCount++
		author.CommitCount++
	}
}

// Merge adds the history of other into f. Lines of code are left untouched.
func (f *FileRecord) Merge(other *FileRecord) {
	if other == nil {
		return
	}
	f.Additions += other.Additions
	f.Deletions += other.Deletions
	f.Churn = f.Additions + f.Deletions
	f.CommitCount += other.CommitCount
	if f.Authors == nil {
		f.Authors = make(map[string]*AuthorContribution, len(other.Authors))
	}
	for identity, contrib := range other.Authors {
		author, ok := f.Authors[identity]
		if !ok {
			author = &AuthorContribution{Identity: identity}
			f.Authors[identity] = author
		}
		author.Additions += contrib.Additions
		author.Deletions += contrib.Deletions
		author.CommitCount += contrib.CommitCount
	}
}

// HasHistory reports whether any commit touched the file in the scan window.
func (f *FileRecord) HasHistory() bool {
	return f.CommitCount > 0 || f.Churn > 0
}

// RepoData is the complete result of one scan. It is built once by the
// repository walker and treated as read-only afterwards.
type RepoData struct {
	Root     string                 `json:"root" yaml:"root"`         // Absolute scan root
	Since    string                 `json:"since" yaml:"since"`       // Time window handed to git
	Roots    []string               `json:"roots" yaml:"roots"`       // Discovered git roots, relative to Root
	Files    map[string]*FileRecord `json:"files" yaml:"files"`       // Keyed by forward-slash relative path
	Coverage *float64               `json:"coverage" yaml:"coverage"` // Fallback pipeline coverage for the tree
}

// NewRepoData returns an empty dataset for root.
func NewRepoData(root, since string) *RepoData {
	return &RepoData{
		Root:  root,
		Since: since,
		Files: make(map[string]*FileRecord),
	}
}

// ProjectMetrics is the result of slicing a RepoData by a subdirectory.
// It is recomputed on every request and owns no state.
type ProjectMetrics struct {
	Path           string               `json:"path" yaml:"path"`
	LinesOfCode    int                  `json:"lines_of_code" yaml:"lines_of_code"`
	Churn          int                  `json:"churn" yaml:"churn"`
	CommitCount    int                  `json:"commit_count" yaml:"commit_count"`
	FileCount      int                  `json:"file_count" yaml:"file_count"`
	Coverage       *float64             `json:"coverage" yaml:"coverage"`
	CoverageSource CoverageSource       `json:"coverage_source" yaml:"coverage_source"`
	Authors        []AuthorContribution `json:"authors" yaml:"authors"`
}

// CoverageReport explains the coverage resolved for one sub path.
type CoverageReport struct {
	Path           string         `json:"path" yaml:"path"`
	Coverage       *float64       `json:"coverage" yaml:"coverage"`
	CoverageSource CoverageSource `json:"coverage_source" yaml:"coverage_source"`
	Heuristic      *float64       `json:"heuristic" yaml:"heuristic"`
	Pipeline       *float64       `json:"pipeline" yaml:"pipeline"`
	SourceFiles    int            `json:"source_files" yaml:"source_files"`
	TestFiles      int            `json:"test_files" yaml:"test_files"`
	TotalMethods   int            `json:"total_methods" yaml:"total_methods"`
	CoveredMethods int            `json:"covered_methods" yaml:"covered_methods"`
	Uncovered      []string       `json:"uncovered_methods" yaml:"uncovered_methods"` // As "path:method"
}

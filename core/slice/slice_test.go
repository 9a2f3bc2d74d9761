package slice

import (
	"testing"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEstimator struct {
	value *float64
	calls []string
}

func (f *fixedEstimator) Estimate(_ *schema.RepoData, subPath string) *float64 {
	f.calls = append(f.calls, subPath)
	return f.value
}

func ptr(v float64) *float64 { return &v }

func sampleData() *schema.RepoData {
	data := schema.NewRepoData("/scan", "24 hours ago")
	add := func(p string, loc int, changes ...func(*schema.FileRecord)) {
		rec := schema.NewFileRecord(p)
		rec.LinesOfCode = loc
		for _, c := range changes {
			c(rec)
		}
		data.Files[p] = rec
	}
	add("a/b/c.ts", 10, func(r *schema.FileRecord) {
		r.AddChange("alice@x", 5, 1, true)
		r.AddChange("bob@x", 2, 2, true)
	})
	add("a/bc.ts", 7, func(r *schema.FileRecord) { r.AddChange("carol@x", 1, 0, true) })
	add("a/b", 3)
	add("z.go", 1, func(r *schema.FileRecord) { r.AddChange("alice@x", 0, 4, true) })
	return data
}

func TestSlice_RootEqualsSumOfFiles(t *testing.T) {
	data := sampleData()
	var loc, churn, commits int
	for _, rec := range data.Files {
		loc += rec.LinesOfCode
		churn += rec.Churn
		commits += rec.CommitCount
	}

	for _, root := range []string{"", "."} {
		m := Slice(data, root, nil)
		assert.Equal(t, loc, m.LinesOfCode)
		assert.Equal(t, churn, m.Churn)
		assert.Equal(t, commits, m.CommitCount)
		assert.Equal(t, len(data.Files), m.FileCount)
		assert.Equal(t, schema.RootPath, m.Path)
	}
}

func TestSlice_SegmentBoundary(t *testing.T) {
	m := Slice(sampleData(), "a/b", nil)

	assert.Equal(t, 13, m.LinesOfCode, "a/b/c.ts and the file named a/b, not a/bc.ts")
	assert.Equal(t, 10, m.Churn)
	assert.Equal(t, 2, m.CommitCount)
	assert.Equal(t, 2, m.FileCount)

	m = Slice(sampleData(), "a/b/", nil)
	assert.Equal(t, "a/b", m.Path)
	assert.Equal(t, 13, m.LinesOfCode)
}

func TestSlice_AuthorsReaggregated(t *testing.T) {
	m := Slice(sampleData(), "", nil)

	require.Len(t, m.Authors, 3)
	assert.Equal(t, "alice@x", m.Authors[0].Identity)
	assert.Equal(t, 5, m.Authors[0].Additions)
	assert.Equal(t, 5, m.Authors[0].Deletions)
	assert.Equal(t, 2, m.Authors[0].CommitCount)
	assert.Equal(t, "bob@x", m.Authors[1].Identity)
	assert.Equal(t, "carol@x", m.Authors[2].Identity)
}

func TestSlice_CoverageResolution(t *testing.T) {
	data := sampleData()

	m := Slice(data, "a", &fixedEstimator{})
	assert.Nil(t, m.Coverage)
	assert.Equal(t, schema.NoCoverage, m.CoverageSource)

	data.Coverage = ptr(71.5)
	m = Slice(data, "a", &fixedEstimator{})
	require.NotNil(t, m.Coverage)
	assert.InDelta(t, 71.5, *m.Coverage, 1e-9)
	assert.Equal(t, schema.PipelineCoverage, m.CoverageSource)

	est := &fixedEstimator{value: ptr(40)}
	m = Slice(data, "./a", est)
	require.NotNil(t, m.Coverage)
	assert.InDelta(t, 40.0, *m.Coverage, 1e-9)
	assert.Equal(t, schema.HeuristicCoverage, m.CoverageSource)
	assert.Equal(t, []string{"a"}, est.calls)
}

func TestSlice_NoMatches(t *testing.T) {
	m := Slice(sampleData(), "missing", nil)
	assert.Zero(t, m.FileCount)
	assert.Empty(t, m.Authors)

	m = Slice(nil, "x", nil)
	assert.Zero(t, m.LinesOfCode)
}

func TestFiles_Sorted(t *testing.T) {
	recs := Files(sampleData(), "a")
	var paths []string
	for _, r := range recs {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"a/b", "a/b/c.ts", "a/bc.ts"}, paths)
}

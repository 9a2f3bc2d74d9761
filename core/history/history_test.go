package history

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/gittest"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `--aaa111|alice@example.com

10	2	src/app.ts
3	1	src/app.ts
-	-	assets/logo.png
--bbb222|bob@example.com

0	5	src/app.ts
4	0	src/{old => new}/util.ts
--ccc333|

1	1	README.md
--ddd444|carol@example.com
--eee555|dave@example.com

2	0	docs/a.md => docs/b.md
`

func TestParse(t *testing.T) {
	records := Parse([]byte(sampleLog))

	require.Contains(t, records, "src/app.ts")
	app := records["src/app.ts"]
	assert.Equal(t, 13, app.Additions)
	assert.Equal(t, 8, app.Deletions)
	assert.Equal(t, app.Additions+app.Deletions, app.Churn)
	assert.Equal(t, 2, app.CommitCount, "one commit per hash, not per hunk")
	assert.Equal(t, 1, app.Authors["alice@example.com"].CommitCount)
	assert.Equal(t, 5, app.Authors["bob@example.com"].Deletions)

	assert.NotContains(t, records, "assets/logo.png", "binary entries are ignored")

	require.Contains(t, records, "src/new/util.ts")
	assert.Equal(t, 4, records["src/new/util.ts"].Additions)

	require.Contains(t, records, "README.md")
	assert.Contains(t, records["README.md"].Authors, schema.UnknownAuthor)

	require.Contains(t, records, "docs/b.md")
	assert.Len(t, records, 4, "merge commit without numstat lines contributes nothing")
}

func TestParse_Malformed(t *testing.T) {
	records := Parse([]byte("garbage\nx\ty\tz\n1\t2\n--\n5\t5\tok.go\n"))
	require.Len(t, records, 1)
	assert.Equal(t, 1, records["ok.go"].CommitCount)
	assert.Contains(t, records["ok.go"].Authors, schema.UnknownAuthor)
}

func TestParse_QuotedPaths(t *testing.T) {
	out := "--aaa|alice@example.com\n" +
		"3\t0\t\"src/caf\\303\\251.go\"\n" +
		"1\t0\t\"docs/tab\\there.md\"\n" +
		"2\t0\tsrc/café.go\n"
	records := Parse([]byte(out))

	require.Contains(t, records, "src/café.go")
	assert.Equal(t, 5, records["src/café.go"].Additions)
	assert.Equal(t, 1, records["src/café.go"].CommitCount)
	assert.Contains(t, records, "docs/tab\there.md")
	assert.Len(t, records, 2)
}

func TestParseRenamePath(t *testing.T) {
	tests := []struct {
		name, input, oldPath, newPath string
	}{
		{"simple", "old.go => new.go", "old.go", "new.go"},
		{"braced", "src/{utils => helpers}/file.go", "src/utils/file.go", "src/helpers/file.go"},
		{"braced empty side", "src/{ => sub}/f.go", "src//f.go", "src/sub/f.go"},
		{"malformed brace", "src/{utils/file.go", "", ""},
		{"no arrow in braces", "src/{utils}/file.go", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, n := parseRenamePath(tt.input)
			assert.Equal(t, tt.oldPath, o)
			assert.Equal(t, tt.newPath, n)
		})
	}
	assert.Equal(t, "src/f.go", resolveRenamePath("src/{sub => }/f.go"))
}

func TestExtract_GitFailure(t *testing.T) {
	client := new(contract.MockGitClient)
	ctx := context.Background()
	client.On("GetNumstatLog", ctx, "/repo", "24 hours ago").Return(nil, errors.New("not a git repository"))

	records := Extract(ctx, client, "/repo", "24 hours ago")
	assert.NotNil(t, records)
	assert.Empty(t, records)
	client.AssertExpectations(t)
}

func TestExtract_RealRepository(t *testing.T) {
	gittest.SkipIfGitNotAvailable(t)
	dir := t.TempDir()
	gittest.Init(t, dir)
	gittest.Commit(t, dir, "alice@example.com", map[string]string{"pkg/a.go": "package pkg\n\nvar A = 1\n"})
	gittest.Commit(t, dir, "bob@example.com", map[string]string{"pkg/a.go": "package pkg\n\nvar A = 2\n"})

	records := Extract(context.Background(), contract.NewLocalGitClient(), dir, "1 year ago")

	require.Contains(t, records, "pkg/a.go")
	a := records["pkg/a.go"]
	assert.Equal(t, 2, a.CommitCount)
	assert.Equal(t, 4, a.Additions)
	assert.Equal(t, 1, a.Deletions)
	assert.Len(t, a.Authors, 2)
}

package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repometrics/core/slice"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/gittest"
	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(root string) *contract.Config {
	return &contract.Config{
		RepoPath:   root,
		Since:      "1 year ago",
		Workers:    2,
		Extensions: contract.DefaultExtensions,
		SkipDirs:   contract.DefaultSkipDirs,
	}
}

func mkdirs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755))
	}
}

func TestDiscoverRoots(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		".git/objects",
		"services/api/.git",
		"services/api/plugins/ext/.git",
		"node_modules/dep/.git",
		"web",
	)
	// Worktrees and submodules use a .git file
	require.NoError(t, os.WriteFile(filepath.Join(root, "web", ".git"), []byte("gitdir: ../.git/modules/web\n"), 0o644))

	roots := DiscoverRoots(context.Background(), root)
	assert.ElementsMatch(t, []string{"", "services/api", "services/api/plugins/ext", "web"}, roots)
}

func TestDiscoverRoots_MissingRoot(t *testing.T) {
	assert.Empty(t, DiscoverRoots(context.Background(), filepath.Join(t.TempDir(), "missing")))
}

func TestScan_NestedRepositories(t *testing.T) {
	gittest.SkipIfGitNotAvailable(t)
	root := t.TempDir()
	alpha := filepath.Join(root, "alpha")
	beta := filepath.Join(root, "group", "beta")

	gittest.Init(t, alpha)
	gittest.Commit(t, alpha, "alice@example.com", map[string]string{"src/a.ts": "let a = 1;\nlet b = 2;\n"})
	gittest.Init(t, beta)
	gittest.Commit(t, beta, "bob@example.com", map[string]string{"b.py": "x = 1\n", "gone.py": "y = 2\n"})
	require.NoError(t, os.Remove(filepath.Join(beta, "gone.py")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "loose.go"), []byte("package loose\n"), 0o644))

	data := Scan(context.Background(), testConfig(root), contract.NewLocalGitClient(), nil)

	assert.ElementsMatch(t, []string{"alpha", "group/beta"}, data.Roots)

	require.Contains(t, data.Files, "alpha/src/a.ts")
	a := data.Files["alpha/src/a.ts"]
	assert.Equal(t, 2, a.LinesOfCode)
	assert.Equal(t, 2, a.Additions)
	assert.Equal(t, 1, a.CommitCount)
	assert.Contains(t, a.Authors, "alice@example.com")
	assert.NotContains(t, a.Authors, "bob@example.com")

	require.Contains(t, data.Files, "group/beta/b.py")
	assert.Contains(t, data.Files["group/beta/b.py"].Authors, "bob@example.com")
	assert.NotContains(t, data.Files["group/beta/b.py"].Authors, "alice@example.com")

	require.Contains(t, data.Files, "group/beta/gone.py")
	gone := data.Files["group/beta/gone.py"]
	assert.Equal(t, 0, gone.LinesOfCode)
	assert.Equal(t, 1, gone.Additions)

	require.Contains(t, data.Files, "loose.go")
	assert.Equal(t, 1, data.Files["loose.go"].LinesOfCode)
	assert.False(t, data.Files["loose.go"].HasHistory())

	for p, rec := range data.Files {
		assert.Equal(t, p, rec.Path)
		assert.Equal(t, rec.Additions+rec.Deletions, rec.Churn)
	}
}

func TestScan_FailingRootDoesNotAbortSiblings(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "ok/.git", "broken/.git")

	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("GetNumstatLog", ctx, filepath.Join(root, "ok"), "1 year ago").
		Return([]byte("--h1|dev@example.com\n\n3\t1\tmain.go\n"), nil)
	client.On("GetNumstatLog", ctx, filepath.Join(root, "broken"), "1 year ago").
		Return(nil, errors.New("fatal: bad object HEAD"))

	data := Scan(ctx, testConfig(root), client, nil)

	require.Contains(t, data.Files, "ok/main.go")
	assert.Equal(t, 4, data.Files["ok/main.go"].Churn)
	assert.Equal(t, 0, data.Files["ok/main.go"].LinesOfCode)
	assert.Len(t, data.Files, 1)
	client.AssertExpectations(t)
}

func TestScan_UsesHistoryCache(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".git")
	ctx := context.Background()

	cfg := testConfig(root)
	cfg.SinceTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Since = cfg.SinceTime.Format(time.RFC3339)

	client := new(contract.MockGitClient)
	client.On("GetRepoHash", ctx, root).Return("deadbeef", nil)

	key := generateCacheKey(root, "deadbeef", cfg.SinceTime)
	cached := []byte(`{"cached.go":{"path":"cached.go","churn":5,"additions":5,"commit_count":1,"authors":{}}}`)

	store := new(iocache.MockCacheStore)
	store.On("Get", key).Return(cached, currentCacheVersion, time.Now().Unix(), nil)
	mgr := new(iocache.MockCacheManager)
	mgr.On("GetHistoryStore").Return(store)

	data := Scan(ctx, cfg, client, mgr)

	require.Contains(t, data.Files, "cached.go")
	assert.Equal(t, 5, data.Files["cached.go"].Churn)
	client.AssertNotCalled(t, "GetNumstatLog", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScan_StoresOnCacheMiss(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".git")
	ctx := context.Background()

	cfg := testConfig(root)
	cfg.SinceTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Since = cfg.SinceTime.Format(time.RFC3339)

	client := new(contract.MockGitClient)
	client.On("GetRepoHash", ctx, root).Return("cafe", nil)
	client.On("GetNumstatLog", ctx, root, cfg.Since).Return([]byte("--h|a@x\n1\t1\tx.go\n"), nil)

	key := generateCacheKey(root, "cafe", cfg.SinceTime)
	store := new(iocache.MockCacheStore)
	store.On("Get", key).Return(nil, 0, int64(0), errors.New("miss"))
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
	mgr := new(iocache.MockCacheManager)
	mgr.On("GetHistoryStore").Return(store)

	data := Scan(ctx, cfg, client, mgr)

	assert.Equal(t, 2, data.Files["x.go"].Churn)
	store.AssertExpectations(t)
}

func TestCheckCacheHit_StaleOrWrongVersion(t *testing.T) {
	store := new(iocache.MockCacheStore)
	old := time.Now().Add(-8 * 24 * time.Hour).Unix()
	store.On("Get", "stale").Return([]byte(`{}`), currentCacheVersion, old, nil)
	store.On("Get", "version").Return([]byte(`{}`), currentCacheVersion+1, time.Now().Unix(), nil)

	assert.Nil(t, checkCacheHit(store, "stale"))
	assert.Nil(t, checkCacheHit(store, "version"))
}

func TestScan_NonASCIIPaths(t *testing.T) {
	gittest.SkipIfGitNotAvailable(t)
	root := t.TempDir()
	gittest.Init(t, root)
	gittest.Commit(t, root, "alice@example.com", map[string]string{
		"src/café.go": "package src\nvar x = 1\n",
	})

	data := Scan(context.Background(), testConfig(root), contract.NewLocalGitClient(), nil)

	require.Len(t, data.Files, 1)
	require.Contains(t, data.Files, "src/café.go")
	rec := data.Files["src/café.go"]
	assert.Equal(t, 2, rec.LinesOfCode)
	assert.Equal(t, 2, rec.Churn)
	assert.Equal(t, 1, rec.CommitCount)

	project := slice.Slice(data, "src", nil)
	assert.Equal(t, 2, project.Churn)
	assert.Equal(t, 1, project.CommitCount)
}

package contract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/repometrics/internal/gittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	expectedErr := errors.New("mocked git error")

	mockClient.On("Run", ctx, "/path/to/repo", "log", "-1").Return([]byte("a1b2c3d"), expectedErr).Once()

	out, err := mockClient.Run(ctx, "/path/to/repo", "log", "-1")
	assert.Equal(t, []byte("a1b2c3d"), out)
	assert.Equal(t, expectedErr, err)
	mockClient.AssertExpectations(t)
}

func TestLocalGitClient_Repository(t *testing.T) {
	gittest.SkipIfGitNotAvailable(t)
	ctx := context.Background()
	dir := t.TempDir()
	gittest.Init(t, dir)
	gittest.Commit(t, dir, "alice@example.com", map[string]string{"main.go": "package main\n"})
	gittest.Run(t, dir, "remote", "add", "origin", "https://gitlab.example.com/team/app.git")

	client := NewLocalGitClient()

	hash, err := client.GetRepoHash(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	root, err := client.GetRepoRoot(ctx, filepath.Join(dir))
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(dir)
	rootResolved, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, resolved, rootResolved)

	remote, err := client.GetRemoteURL(ctx, dir, "origin")
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.example.com/team/app.git", remote)

	out, err := client.GetNumstatLog(ctx, dir, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "--"+hash+"|alice@example.com"))
	assert.Contains(t, string(out), "1\t0\tmain.go")
}

func TestLocalGitClient_NotARepository(t *testing.T) {
	gittest.SkipIfGitNotAvailable(t)
	client := NewLocalGitClient()

	_, err := client.GetRepoHash(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git command failed")
}

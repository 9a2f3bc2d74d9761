// Package gittest builds throwaway git working copies for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SkipIfGitNotAvailable skips the test if git binary is not found in PATH.
func SkipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// Init creates dir if needed and turns it into an empty repository.
func Init(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	Run(t, dir, "init", "-q")
	Run(t, dir, "config", "user.email", "fixture@example.com")
	Run(t, dir, "config", "user.name", "Fixture")
	Run(t, dir, "config", "commit.gpgsign", "false")
}

// Commit writes files (relative path to content), stages everything and
// commits as the given author email.
func Commit(t *testing.T, dir, email string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	Run(t, dir, "add", "-A")
	Run(t, dir, "commit", "-q", "--author", "Dev <"+email+">", "-m", "fixture commit")
}

// Run executes git in dir and fails the test on error.
func Run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

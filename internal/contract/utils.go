package contract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Coverage label constants.
const (
	GoodValue    = "Good"
	FairValue    = "Fair"
	PoorValue    = "Poor"
	UnknownValue = "n/a"
)

// Color variables for console output.
var (
	GoodColor    = color.New(color.FgGreen, color.Bold)
	FairColor    = color.New(color.FgYellow)
	PoorColor    = color.New(color.FgRed, color.Bold)
	UnknownColor = color.New(color.FgHiBlack)
)

// GetPlainLabel returns a plain text label for a coverage percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(coverage *float64) string {
	switch {
	case coverage == nil:
		return UnknownValue
	case *coverage >= 80:
		return GoodValue
	case *coverage >= 50:
		return FairValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(coverage *float64) string {
	text := GetPlainLabel(coverage)

	switch text {
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	case PoorValue:
		return PoorColor.Sprint(text)
	default:
		return UnknownColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// NormalizePath converts an OS specific relative path to forward slashes
// and strips any leading "./".
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

// MatchesPrefix reports whether p equals prefix or lies under it.
// Matching is on whole path segments, so "abc" does not match "abcd/file".
// An empty prefix matches everything.
func MatchesPrefix(p, prefix string) bool {
	if prefix == "" {
		return true
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// NormalizeSubPath normalizes a user-provided path relative to the scan root
// and ensures it stays inside it. Both "" and "." denote the root itself.
func NormalizeSubPath(repoPath, userPath string) (string, error) {
	if userPath == "" || userPath == "." {
		return "", nil
	}
	if filepath.IsAbs(userPath) {
		if repoPath == "" {
			return "", fmt.Errorf("absolute path %s needs a scan root", userPath)
		}
		relPath, err := filepath.Rel(repoPath, userPath)
		if err != nil {
			return "", fmt.Errorf("path is outside the scan root: %s", userPath)
		}
		userPath = relPath
	}

	normalized := NormalizePath(userPath)
	if normalized == ".." || strings.HasPrefix(normalized, "../") {
		return "", fmt.Errorf("path is outside the scan root: %s", userPath)
	}
	return normalized, nil
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the history cache.
func GetCacheDBFilePath() string {
	return homeFile(".repometrics_cache.db")
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for metric snapshots.
func GetSnapshotDBFilePath() string {
	return homeFile(".repometrics_snapshots.db")
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

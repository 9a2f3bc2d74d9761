// Package history turns git numstat logs into per-file change records.
package history

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
)

// Extract runs the numstat log for repoRoot since the given time expression and
// returns one record per touched file, keyed by path relative to repoRoot.
// Any git failure yields an empty result and a warning.
func Extract(ctx context.Context, client contract.GitClient, repoRoot, since string) map[string]*schema.FileRecord {
	records, err := Load(ctx, client, repoRoot, since)
	if err != nil {
		log.Warn().Err(err).Str("root", repoRoot).Msg("Skipping history for repository")
		return map[string]*schema.FileRecord{}
	}
	return records
}

// Load is Extract without the fallback, for callers that must tell an empty
// window apart from a failed git invocation.
func Load(ctx context.Context, client contract.GitClient, repoRoot, since string) (map[string]*schema.FileRecord, error) {
	out, err := client.GetNumstatLog(ctx, repoRoot, since)
	if err != nil {
		return nil, fmt.Errorf("reading history of %s: %w", repoRoot, err)
	}
	return Parse(out), nil
}

// commitState tracks the commit header currently being parsed.
type commitState struct {
	hash   string
	author string
}

// Parse aggregates raw `git log --numstat --format=--%H|%aE` output.
// Lines that are not a commit header or a numeric numstat line are ignored.
func Parse(out []byte) map[string]*schema.FileRecord {
	records := make(map[string]*schema.FileRecord)
	lastCommit := make(map[string]string) // path -> hash that last touched it
	var current commitState

	for line := range strings.SplitSeq(string(out), "\n") {
		line = strings.TrimRight(line, "\r")

		if strings.HasPrefix(line, "--") {
			current = parseCommitHeader(line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		p, add, del, ok := parseNumstatLine(line)
		if !ok {
			continue
		}

		rec, exists := records[p]
		if !exists {
			rec = schema.NewFileRecord(p)
			records[p] = rec
		}
		newCommit := current.hash == "" || lastCommit[p] != current.hash
		lastCommit[p] = current.hash
		rec.AddChange(current.author, add, del, newCommit)
	}
	return records
}

// parseCommitHeader extracts hash and author email from a header line.
func parseCommitHeader(line string) commitState {
	parts := strings.SplitN(line[2:], "|", 2) // hash|email
	state := commitState{hash: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		state.author = strings.TrimSpace(parts[1])
	}
	return state
}

// parseNumstatLine parses "<add>\t<del>\t<path>". Binary entries ("-\t-")
// and anything else without numeric counts report ok=false.
func parseNumstatLine(line string) (string, int, int, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return "", 0, 0, false
	}
	add, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || add < 0 {
		return "", 0, 0, false
	}
	del, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || del < 0 {
		return "", 0, 0, false
	}
	p := unquotePath(resolveRenamePath(unquotePath(parts[2])))
	if p == "" {
		return "", 0, 0, false
	}
	return p, add, del, true
}

// unquotePath undoes git's C-style quoting, which still applies to names
// holding quotes, backslashes or control characters.
func unquotePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	if u, err := strconv.Unquote(p); err == nil {
		return u
	}
	return p
}

// resolveRenamePath returns the destination of a rename, or the path itself.
func resolveRenamePath(p string) string {
	if !strings.Contains(p, " => ") {
		return p
	}
	_, newPath := parseRenamePath(p)
	if newPath == "" {
		return ""
	}
	return path.Clean(newPath)
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(p string) (string, string) {
	if !strings.Contains(p, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(p, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	braceStart := strings.Index(p, "{")
	braceEnd := strings.Index(p, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := p[:braceStart]
	renamePart := p[braceStart+1 : braceEnd]
	suffix := p[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	return prefix + renameParts[0] + suffix, prefix + renameParts[1] + suffix
}

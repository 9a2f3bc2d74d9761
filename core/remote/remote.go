// Package remote identifies where a scanned tree is hosted and which of its
// directories are projects.
package remote

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/rs/zerolog/log"
)

// configURLRe finds the first remote url in a .git/config file.
var configURLRe = regexp.MustCompile(`url\s*=\s*([^\n\r]+)`)

// RepoInfo describes the hosting of a working copy.
type RepoInfo struct {
	GitRoot   string          `json:"git_root,omitempty"`
	RemoteURL string          `json:"remote_url,omitempty"`
	Kind      schema.RepoKind `json:"kind"`
}

// Detect finds the remote of the working copy containing path. It asks git
// for remote.origin.url first, then reads the nearest .git/config upwards,
// then a projects.json manifest in path. gitlabHost marks self-hosted GitLab.
func Detect(ctx context.Context, client contract.GitClient, path, gitlabHost string) RepoInfo {
	info := RepoInfo{Kind: schema.LocalRepo}

	if client != nil {
		if url, err := client.GetRemoteURL(ctx, path, "origin"); err == nil && url != "" {
			info.RemoteURL = url
			if root, err := client.GetRepoRoot(ctx, path); err == nil {
				info.GitRoot = root
			}
		}
	}
	if info.RemoteURL == "" {
		info.GitRoot, info.RemoteURL = readGitConfig(path)
	}
	info.Kind = Classify(info.RemoteURL, gitlabHost)

	if info.Kind == schema.LocalRepo {
		if url, kind, ok := readManifest(path); ok {
			info.RemoteURL = url
			info.Kind = kind
		}
	}
	return info
}

// Classify maps a remote URL to its hosting platform.
func Classify(remoteURL, gitlabHost string) schema.RepoKind {
	lower := strings.ToLower(remoteURL)
	switch {
	case lower == "":
		return schema.LocalRepo
	case strings.Contains(lower, "github.com"):
		return schema.GitHubRepo
	case strings.Contains(lower, "gitlab"):
		return schema.GitLabRepo
	case gitlabHost != "" && strings.Contains(lower, strings.ToLower(gitlabHost)):
		return schema.GitLabRepo
	default:
		return schema.LocalRepo
	}
}

// readGitConfig walks up from path to the first directory holding .git/config.
func readGitConfig(path string) (string, string) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", ""
	}
	for {
		content, err := os.ReadFile(filepath.Join(current, ".git", "config"))
		if err == nil {
			if m := configURLRe.FindSubmatch(content); m != nil {
				return current, strings.TrimSpace(string(m[1]))
			}
			return current, ""
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ""
		}
		current = parent
	}
}

// manifestProject holds the URL fields of a GitLab/GitHub project export.
type manifestProject struct {
	HTTPURL string `json:"http_url_to_repo"`
	WebURL  string `json:"web_url"`
	SSHURL  string `json:"ssh_url_to_repo"`
}

func (p manifestProject) url() string {
	for _, u := range []string{p.HTTPURL, p.WebURL, p.SSHURL} {
		if u != "" {
			return u
		}
	}
	return ""
}

// readManifest reads the first project of a projects.json manifest, which may
// be a list, an object with a "projects" list, or a single project.
func readManifest(path string) (string, schema.RepoKind, bool) {
	content, err := os.ReadFile(filepath.Join(path, "projects.json"))
	if err != nil {
		return "", "", false
	}

	var first manifestProject
	var list []manifestProject
	var wrapped struct {
		Projects []manifestProject `json:"projects"`
	}
	switch {
	case json.Unmarshal(content, &list) == nil:
		if len(list) > 0 {
			first = list[0]
		}
	case json.Unmarshal(content, &wrapped) == nil && len(wrapped.Projects) > 0:
		first = wrapped.Projects[0]
	default:
		if err := json.Unmarshal(content, &first); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Ignoring unreadable projects.json")
			return "", "", false
		}
	}

	lower := strings.ToLower(string(content))
	switch {
	case strings.Contains(lower, "gitlab"):
		return first.url(), schema.GitLabRepo, true
	case strings.Contains(lower, "github"):
		return first.url(), schema.GitHubRepo, true
	default:
		return "", "", false
	}
}

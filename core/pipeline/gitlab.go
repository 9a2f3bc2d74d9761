// Package pipeline reads CI-reported coverage from the hosting platform.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/rs/zerolog/log"
)

// maxResponseBytes bounds how much of a pipeline response is decoded.
const maxResponseBytes = 1 << 20

// scpLikeRe matches "user@host:group/project.git" remotes.
var scpLikeRe = regexp.MustCompile(`^[\w.-]+@([^:/]+):(.+)$`)

// GitLabClient fetches the coverage of the latest pipeline of a GitLab project.
type GitLabClient struct {
	apiURL string
	host   string
	token  string
	client *http.Client
}

var _ contract.CoverageClient = &GitLabClient{} // Compile-time check

// NewGitLabClient creates a client for the API at apiURL. Remotes are only
// recognized when their host matches host.
func NewGitLabClient(apiURL, host, token string, timeout time.Duration) *GitLabClient {
	if timeout <= 0 {
		timeout = contract.DefaultCoverageTimeout
	}
	return &GitLabClient{
		apiURL: strings.TrimRight(apiURL, "/"),
		host:   host,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// NewGitLabClientFromConfig creates a client from the validated config.
func NewGitLabClientFromConfig(cfg *contract.Config) *GitLabClient {
	return NewGitLabClient(cfg.GitLabAPIURL, cfg.GitLabHost, cfg.GitLabToken, cfg.CoverageTimeout)
}

// ProjectPath extracts "group/project" from an https, ssh or scp-like remote
// URL whose host matches the client's host.
func (c *GitLabClient) ProjectPath(remoteURL string) (string, bool) {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return "", false
	}

	var host, projectPath string
	if m := scpLikeRe.FindStringSubmatch(remoteURL); m != nil && !strings.Contains(remoteURL, "://") {
		host, projectPath = m[1], m[2]
	} else {
		u, err := url.Parse(remoteURL)
		if err != nil || u.Host == "" {
			return "", false
		}
		host, projectPath = u.Hostname(), u.Path
	}

	if !strings.EqualFold(host, hostname(c.host)) {
		return "", false
	}
	projectPath = strings.Trim(projectPath, "/")
	projectPath = strings.TrimSuffix(projectPath, ".git")
	if projectPath == "" {
		return "", false
	}
	return projectPath, true
}

// LatestCoverage implements contract.CoverageClient. Every failure is logged
// and reported as nil.
func (c *GitLabClient) LatestCoverage(ctx context.Context, remoteURL string) *float64 {
	projectPath, ok := c.ProjectPath(remoteURL)
	if !ok {
		log.Debug().Str("url", remoteURL).Msg("Remote is not a known GitLab project")
		return nil
	}
	if c.token == "" {
		log.Debug().Str("url", remoteURL).Msg("No GitLab token configured")
		return nil
	}

	coverage, err := c.fetch(ctx, projectPath)
	if err != nil {
		log.Warn().Err(err).Str("url", remoteURL).Msg("Pipeline coverage unavailable")
		return nil
	}
	return coverage
}

// pipelineResponse is the subset of the GitLab pipeline payload we read.
// Coverage is a decimal string, though some versions send a number.
type pipelineResponse struct {
	Coverage any `json:"coverage"`
}

func (c *GitLabClient) fetch(ctx context.Context, projectPath string) (*float64, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/pipelines/latest", c.apiURL, url.PathEscape(projectPath))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		log.Debug().Str("project", projectPath).Msg("No pipeline found")
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GitLab API returned %s for %s", resp.Status, projectPath)
	}

	var payload pipelineResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	return parseCoverage(payload.Coverage), nil
}

// parseCoverage accepts a decimal string or a JSON number.
func parseCoverage(v any) *float64 {
	switch c := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil
		}
		return &f
	case float64:
		return &c
	default:
		return nil
	}
}

func hostname(host string) string {
	if h, _, ok := strings.Cut(host, ":"); ok {
		return h
	}
	return host
}

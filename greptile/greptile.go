// Package greptile is a client for the Greptile query API.
package greptile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"repo-orbit/model"
)

const (
	DefaultAPIURL = "https://api.greptile.com"
	DefaultBranch = "main"

	promptTemplate = "How does %s connect to the overall repository? Tell me its role and what it connects to."
)

var (
	ErrMissingAPIKey = errors.New("greptile api key is not configured")
	ErrQueryFailed   = errors.New("greptile query failed")
)

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type Repository struct {
	Remote     string `json:"remote"`
	Branch     string `json:"branch"`
	Repository string `json:"repository"`
}

type QueryRequest struct {
	Messages     []Message    `json:"messages"`
	Repositories []Repository `json:"repositories"`
}

type QueryResponse struct {
	Message string `json:"message"`
}

// Client sends natural-language questions about a repository to Greptile.
type Client struct {
	BaseURL     string
	APIKey      string
	GitHubToken string
	Branch      string
	HTTPClient  *http.Client
}

func NewClient(apiKey, githubToken string) *Client {
	return &Client{
		BaseURL:     DefaultAPIURL,
		APIKey:      apiKey,
		GitHubToken: githubToken,
		Branch:      DefaultBranch,
		HTTPClient:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// Prompt is the question asked about the file at url.
func Prompt(url string) string {
	return fmt.Sprintf(promptTemplate, url)
}

// NewQueryRequest builds the body for a question about url in repo.
func (c *Client) NewQueryRequest(repo model.RepoComponents, url string) QueryRequest {
	branch := c.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	return QueryRequest{
		Messages: []Message{{Content: Prompt(url), Role: "user"}},
		Repositories: []Repository{{
			Remote:     "github",
			Branch:     branch,
			Repository: repo.FullName(),
		}},
	}
}

// Query asks how the file at url fits into repo and returns Greptile's answer.
func (c *Client) Query(ctx context.Context, repo model.RepoComponents, url string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	payload, err := json.Marshal(c.NewQueryRequest(repo, url))
	if err != nil {
		return "", fmt.Errorf("encoding query: %w", err)
	}

	base := strings.TrimSuffix(c.BaseURL, "/")
	if base == "" {
		base = DefaultAPIURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v2/query", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("X-GitHub-Token", c.GitHubToken)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrQueryFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrQueryFailed, resp.StatusCode, excerpt(body))
	}

	var out QueryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrQueryFailed, err)
	}

	return out.Message, nil
}

func excerpt(body []byte) string {
	const limit = 200
	s := []rune(strings.TrimSpace(string(body)))
	if len(s) > limit {
		return string(s[:limit]) + "..."
	}
	return string(s)
}

package gh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.github.com"

// Error constants
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("not found")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidRepo       = errors.New("owner and repository are required")
	ErrFetchError        = errors.New("could not obtain repository data from the GitHub API")
)

// Client talks to the GitHub REST API with a static credential.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	// Concurrency bounds the number of contents requests in flight during
	// FetchTree. Values below 1 mean sequential.
	Concurrency int

	// Progress, when set, is called after every contents request. It may be
	// called from several goroutines at once.
	Progress func(path string, err error)
}

// NewClient returns a client for the public GitHub API.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:     DefaultAPIURL,
		Token:       token,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		Concurrency: 4,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultAPIURL
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}

// API makes a GET request to /repos/{endpoint} and returns the response body.
// Status codes GitHub uses for auth, rate limit and missing paths are mapped to
// the package's sentinel errors.
func (c *Client) API(ctx context.Context, endpoint string) ([]byte, error) {
	url := fmt.Sprintf("%s/repos/%s", c.baseURL(), endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidToken
	case resp.StatusCode == http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return nil, ErrRateLimitExceeded
		}
		return nil, fmt.Errorf("%w: HTTP 403 Forbidden - check repository access and rate limits", ErrFetchError)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimitExceeded
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return body, nil
}

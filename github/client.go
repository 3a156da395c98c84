package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client talks to the GitHub REST API v3.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new GitHub [Client]. The token may be empty for public
// repositories, at the cost of a lower rate limit.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// contentEntry is one entry of a contents API response.
type contentEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"` // "file" or "dir"
	DownloadURL string `json:"download_url"`
}

// ListFiles walks the repository tree breadth-first via the contents API
// and returns every file.
func (c *Client) ListFiles(ctx context.Context, repo RepoInfo) ([]File, error) {
	var files []File
	queue := []string{""}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		entries, err := c.listPath(ctx, repo, path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			switch e.Type {
			case "file":
				files = append(files, File{Name: e.Name, Path: e.Path, DownloadURL: e.DownloadURL})
			case "dir":
				queue = append(queue, e.Path)
			}
		}
	}
	return files, nil
}

func (c *Client) listPath(ctx context.Context, repo RepoInfo, path string) ([]contentEntry, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Repo), path)
	body, err := c.get(ctx, u, "application/vnd.github.v3+json")
	if err != nil {
		return nil, err
	}

	// A directory returns an array, a single file an object.
	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		var single contentEntry
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("github: parse contents of %q: %w", path, err)
		}
		entries = []contentEntry{single}
	}
	return entries, nil
}

// FetchFile downloads the raw contents of a file previously discovered by
// ListFiles.
func (c *Client) FetchFile(ctx context.Context, downloadURL string) (string, error) {
	body, err := c.get(ctx, downloadURL, "application/vnd.github.v3.raw")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

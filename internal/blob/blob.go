// Package blob reads model bundles from a remote HTTP blob container.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/rugby-predictor/internal/httpclient"
	"github.com/yourusername/rugby-predictor/internal/models"
)

const source = "blob"

var schemePrefixes = []string{"https://", "http://", "az://", "abfs://", "abfss://", "wasb://", "wasbs://", "s3://", "gs://"}

// SanitizeContainer strips protocol prefixes and surrounding slashes from a container identifier
func SanitizeContainer(container string) string {
	c := strings.TrimSpace(container)
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(c)
		for _, p := range schemePrefixes {
			if strings.HasPrefix(lower, p) {
				c = c[len(p):]
				changed = true
				break
			}
		}
	}
	return strings.Trim(c, "/")
}

// Client fetches objects from one container
type Client struct {
	http      *httpclient.RateLimitedClient
	baseURL   string
	container string
}

// NewClient creates a blob client. The container is sanitized before use.
func NewClient(httpClient *httpclient.RateLimitedClient, baseURL, container string) *Client {
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		container: SanitizeContainer(container),
	}
}

// Container returns the sanitized container name
func (c *Client) Container() string {
	return c.container
}

// URL returns the object URL for name
func (c *Client) URL(name string) string {
	parts := []string{c.baseURL}
	if c.container != "" {
		parts = append(parts, url.PathEscape(c.container))
	}
	for _, seg := range strings.Split(strings.Trim(name, "/"), "/") {
		parts = append(parts, url.PathEscape(seg))
	}
	return strings.Join(parts, "/")
}

// Exists reports whether the object is present
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	resp, err := c.http.Head(ctx, c.URL(name))
	if err != nil {
		return false, &models.UpstreamServiceError{Source: source, Code: "unreachable", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, &models.UpstreamServiceError{Source: source, Code: fmt.Sprintf("http_%d", resp.StatusCode)}
	}
}

// Download copies the object to dest and returns the number of bytes written.
// dest only appears once the transfer is complete.
func (c *Client) Download(ctx context.Context, name, dest string) (int64, error) {
	resp, err := c.http.Get(ctx, c.URL(name))
	if err != nil {
		return 0, &models.UpstreamServiceError{Source: source, Code: "unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, &models.NotFoundError{Kind: "blob", Name: name}
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &models.UpstreamServiceError{Source: source, Code: fmt.Sprintf("http_%d", resp.StatusCode)}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return 0, &models.UpstreamServiceError{Source: source, Code: "interrupted", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close scratch file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	return n, nil
}

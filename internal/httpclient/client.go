package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client wraps HTTP operations against the geodata services.
//
// Client provides:
//   - Configured User-Agent header (Overpass asks clients to identify)
//   - Per-client timeout handling
//   - GET/POST with status checking
//   - Streaming file download for elevation tiles
//
// Example usage:
//
//	client := NewClient(5 * time.Minute)
//
//	// POST an Overpass query
//	body, err := client.PostForm(ctx, overpassURL, url.Values{"data": {query}})
//
//	// Stream a tile to disk
//	err = client.DownloadFile(ctx, tileURL, "/data/dem/N47E011.hgt.gz")
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with the given timeout.
//
// The timeout covers the whole request including body transfer, which
// matters for Overpass queries that run minutes server-side.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "alpdeck",
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// GetJSON performs a GET request and decodes the JSON response into v.
//
// Example:
//
//	var fc geojson.FeatureCollection
//	err := client.GetJSON(ctx, queryURL, &fc)
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

// PostForm performs a form-encoded POST request and returns the
// response body as bytes. Overpass takes its query in the "data" field.
func (c *Client) PostForm(ctx context.Context, rawURL string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// DownloadFile downloads a file to the specified path.
//
// The content is streamed directly to disk through a temporary file
// that is renamed on success, so an aborted download never leaves a
// truncated file behind. Parent directories are created as needed.
//
// A 404 response is reported as ErrNotFound so callers can treat
// missing elevation tiles (open sea) as empty.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", rawURL, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	tmp := destPath + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, destPath)
}

// ErrNotFound marks a 404 response.
var ErrNotFound = errors.New("not found")

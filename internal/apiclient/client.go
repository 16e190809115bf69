package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"clipvault/internal/api"
	"clipvault/internal/config"
)

// ErrDaemonNotRunning indicates the daemon API is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Client provides HTTP access to the daemon API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the given base URL. The token may be empty when the
// daemon runs without authentication.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// NewFromConfig builds a client pointed at the configured daemon bind address.
func NewFromConfig(cfg *config.Config) *Client {
	return New("http://"+cfg.Paths.APIBind, cfg.Paths.APIToken)
}

// Status retrieves daemon runtime information.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ingest runs a synchronous ingest of the given reference.
func (c *Client) Ingest(ctx context.Context, reference string) (*api.IngestResponse, error) {
	var resp api.IngestResponse
	req := api.IngestRequest{Reference: reference}
	if err := c.do(ctx, http.MethodPost, "/api/ingest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddClip ingests a reference and records a clip row with metadata.
func (c *Client) AddClip(ctx context.Context, req api.AddClipRequest) (*api.ClipResponse, error) {
	var resp api.ClipResponse
	if err := c.do(ctx, http.MethodPost, "/api/clips", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListClips returns stored clips, newest first, narrowed by the filters.
func (c *Client) ListClips(ctx context.Context, search, eventType string, limit int) (*api.ClipListResponse, error) {
	query := url.Values{}
	if strings.TrimSpace(search) != "" {
		query.Set("search", search)
	}
	if strings.TrimSpace(eventType) != "" {
		query.Set("event_type", eventType)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/clips"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var resp api.ClipListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetClip returns one clip by id.
func (c *Client) GetClip(ctx context.Context, id string) (*api.ClipResponse, error) {
	var resp api.ClipResponse
	if err := c.do(ctx, http.MethodGet, "/api/clips/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateClip patches the editable fields of a clip.
func (c *Client) UpdateClip(ctx context.Context, id string, req api.UpdateClipRequest) (*api.ClipResponse, error) {
	var resp api.ClipResponse
	if err := c.do(ctx, http.MethodPatch, "/api/clips/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveClip deletes a clip row.
func (c *Client) RemoveClip(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/clips/"+url.PathEscape(id), nil, nil)
}

// Prefetch asks the daemon to warm the media cache for the given keys.
func (c *Client) Prefetch(ctx context.Context, keys []string) error {
	return c.do(ctx, http.MethodPost, "/api/cache/prefetch", api.PrefetchRequest{Keys: keys}, nil)
}

// ClearCache drops every cached media blob on the daemon.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/cache/clear", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return ErrDaemonNotRunning
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

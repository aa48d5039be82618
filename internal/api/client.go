package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used to reach the daemon.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL string
	token   string
	httpc   HTTPDoer
}

// NewClient constructs a daemon API client for the given bind address.
// The address may be a bare host:port or a full http URL.
func NewClient(addr, token string) *Client {
	base := strings.TrimSpace(addr)
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		token:   strings.TrimSpace(token),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client, chiefly for tests.
func (c *Client) WithHTTPClient(doer HTTPDoer) *Client {
	if doer != nil {
		c.httpc = doer
	}
	return c
}

// Submit uploads the file at path for analysis and returns the created record.
func (c *Client) Submit(ctx context.Context, path string) (Analysis, error) {
	file, err := os.Open(path)
	if err != nil {
		return Analysis{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return Analysis{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Analysis{}, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Analysis{}, fmt.Errorf("finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyses", &body)
	if err != nil {
		return Analysis{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp AnalysisResponse
	if err := c.do(req, http.StatusCreated, &resp); err != nil {
		return Analysis{}, err
	}
	return resp.Analysis, nil
}

// List fetches stored analyses, optionally filtered by status.
func (c *Client) List(ctx context.Context, statuses ...string) ([]Analysis, error) {
	endpoint := c.baseURL + "/api/analyses"
	if len(statuses) > 0 {
		endpoint += "?status=" + url.QueryEscape(strings.Join(statuses, ","))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	var resp AnalysisListResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Analyses, nil
}

// Get fetches one analysis by numeric ID or UUID.
func (c *Client) Get(ctx context.Context, id string) (Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return Analysis{}, fmt.Errorf("build get request: %w", err)
	}
	var resp AnalysisResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return Analysis{}, err
	}
	return resp.Analysis, nil
}

// Clear removes stored analyses, either all of them or only completed ones.
// It returns the number of removed records.
func (c *Client) Clear(ctx context.Context, completedOnly bool) (int64, error) {
	endpoint := c.baseURL + "/api/analyses"
	if completedOnly {
		endpoint += "?scope=completed"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build clear request: %w", err)
	}
	var resp ClearResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

// Status fetches the daemon's runtime status.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return DaemonStatus{}, fmt.Errorf("build status request: %w", err)
	}
	var resp DaemonStatus
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return DaemonStatus{}, err
	}
	return resp, nil
}

// Health fetches the daemon's component health report.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("build health request: %w", err)
	}
	var resp HealthResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return HealthResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("daemon address is not configured")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

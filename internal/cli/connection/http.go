package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/pixmesh-go/internal/infra/buildinfo"
)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 4 << 10

// Board is the GET /board document.
type Board struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Pixels   [][]string `json:"pixels"`
	Cooldown int        `json:"cooldown"`
}

// Health is the GET /health document.
type Health struct {
	Status        string `json:"status" yaml:"status"`
	Version       string `json:"version" yaml:"version"`
	UptimeSeconds int64  `json:"uptime_seconds" yaml:"uptime_seconds"`
	Width         int    `json:"width" yaml:"width"`
	Height        int    `json:"height" yaml:"height"`
	BoardVersion  uint64 `json:"board_version" yaml:"board_version"`
	Subscribers   int    `json:"subscribers" yaml:"subscribers"`
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string

	// RetryAfter is set on 429 responses.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsCooldown reports whether err is a cooldown rejection.
func IsCooldown(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new HTTP client. server may omit the scheme.
func NewHTTPClient(server string, timeout time.Duration) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Board fetches the full board.
func (c *HTTPClient) Board(ctx context.Context) (*Board, error) {
	resp, err := c.do(ctx, http.MethodGet, "/board", nil)
	if err != nil {
		return nil, err
	}
	var b Board
	if err := ParseResponse(resp, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SetPixel writes one pixel.
func (c *HTTPClient) SetPixel(ctx context.Context, x, y int, color string) error {
	body := struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Color string `json:"color"`
	}{x, y, color}
	resp, err := c.do(ctx, http.MethodPost, "/set", body)
	if err != nil {
		return err
	}
	return ParseResponse(resp, nil)
}

// Clear resets the board.
func (c *HTTPClient) Clear(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/clear", nil)
	if err != nil {
		return err
	}
	return ParseResponse(resp, nil)
}

// Health fetches the server health document.
func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var h Health
	if err := ParseResponse(resp, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "pixmesh-cli/"+buildinfo.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// ParseResponse decodes a successful JSON body into target, or converts an
// error status into *APIError. A nil target discards the body.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return apiErr
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

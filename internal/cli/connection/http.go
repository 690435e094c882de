package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/infra/buildinfo"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/handler"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// HTTPClient talks to the JSON endpoints of a SessionLab app.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for server, which may omit the scheme.
func NewHTTPClient(server string) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Health calls GET /health.
func (c *HTTPClient) Health(ctx context.Context) (*handler.HealthResponse, error) {
	var out handler.HealthResponse
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Captures calls GET /captures on the collector. limit <= 0 returns all.
func (c *HTTPClient) Captures(ctx context.Context, limit int) ([]*domain.Capture, error) {
	path := "/captures"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out handler.CapturesResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Captures, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sessionlab-cli/"+buildinfo.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	return ParseResponse(resp, data)
}

// ParseResponse decodes the response envelope and its data into target.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	envelope := handler.Response{Data: target}
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && envelope.Message != "" {
			return fmt.Errorf("[%s] %s", envelope.Code, envelope.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("parse response: %w", decodeErr)
	}
	return nil
}

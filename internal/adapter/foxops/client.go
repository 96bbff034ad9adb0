// Package foxops is the HTTP client for the foxops REST API.
package foxops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// Config holds the settings of one client. Every client carries its own
// credential; there is no package-level default.
type Config struct {
	BaseURL string        // e.g. https://foxops.example.com
	Token   string        // static foxops API token
	Timeout time.Duration // per request, 0 = rely on the http.Client
}

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements port.IncarnationAPI over HTTP.
type Client struct {
	cfg        Config
	httpClient HTTPDoer
}

// NewClient creates a client. A nil httpClient uses a fresh *http.Client.
func NewClient(cfg Config, httpClient HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: httpClient}
}

// TestAuth calls GET /api/auth/test.
func (c *Client) TestAuth(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/test", nil, nil); err != nil {
		return fmt.Errorf("foxops test auth: %w", err)
	}
	return nil
}

// ListIncarnations calls GET /api/incarnations.
func (c *Client) ListIncarnations(ctx context.Context) ([]domain.IncarnationSummary, error) {
	var list []domain.IncarnationSummary
	if _, err := c.do(ctx, http.MethodGet, "/api/incarnations", nil, &list); err != nil {
		return nil, fmt.Errorf("foxops list incarnations: %w", err)
	}
	if list == nil {
		list = []domain.IncarnationSummary{}
	}
	return list, nil
}

// GetIncarnation calls GET /api/incarnations/{id}.
func (c *Client) GetIncarnation(ctx context.Context, id int) (*domain.Incarnation, error) {
	var inc domain.Incarnation
	if _, err := c.do(ctx, http.MethodGet, incarnationPath(id), nil, &inc); err != nil {
		return nil, fmt.Errorf("foxops get incarnation %d: %w", id, err)
	}
	return &inc, nil
}

// CreateIncarnation calls POST /api/incarnations.
func (c *Client) CreateIncarnation(ctx context.Context, req domain.CreateIncarnationRequest, allowImport bool) (*domain.Incarnation, error) {
	path := "/api/incarnations"
	if allowImport {
		path += "?" + url.Values{"allow_import": {"true"}}.Encode()
	}
	var inc domain.Incarnation
	if _, err := c.do(ctx, http.MethodPost, path, req, &inc); err != nil {
		return nil, fmt.Errorf("foxops create incarnation: %w", err)
	}
	return &inc, nil
}

// UpdateIncarnation calls PUT /api/incarnations/{id}.
func (c *Client) UpdateIncarnation(ctx context.Context, id int, req domain.UpdateIncarnationRequest) (*domain.Incarnation, error) {
	var inc domain.Incarnation
	if _, err := c.do(ctx, http.MethodPut, incarnationPath(id), req, &inc); err != nil {
		return nil, fmt.Errorf("foxops update incarnation %d: %w", id, err)
	}
	return &inc, nil
}

// PatchIncarnation calls PATCH /api/incarnations/{id}.
func (c *Client) PatchIncarnation(ctx context.Context, id int, req domain.PatchIncarnationRequest) (*domain.Incarnation, error) {
	var inc domain.Incarnation
	if _, err := c.do(ctx, http.MethodPatch, incarnationPath(id), req, &inc); err != nil {
		return nil, fmt.Errorf("foxops patch incarnation %d: %w", id, err)
	}
	return &inc, nil
}

// ResetIncarnation calls POST /api/incarnations/{id}/reset.
func (c *Client) ResetIncarnation(ctx context.Context, id int) error {
	if _, err := c.do(ctx, http.MethodPost, incarnationPath(id)+"/reset", nil, nil); err != nil {
		return fmt.Errorf("foxops reset incarnation %d: %w", id, err)
	}
	return nil
}

// DeleteIncarnation calls DELETE /api/incarnations/{id}.
func (c *Client) DeleteIncarnation(ctx context.Context, id int) error {
	if _, err := c.do(ctx, http.MethodDelete, incarnationPath(id), nil, nil); err != nil {
		return fmt.Errorf("foxops delete incarnation %d: %w", id, err)
	}
	return nil
}

// GetIncarnationDiff calls GET /api/incarnations/{id}/diff, which answers with plain text.
func (c *Client) GetIncarnationDiff(ctx context.Context, id int) (string, error) {
	body, err := c.do(ctx, http.MethodGet, incarnationPath(id)+"/diff", nil, nil)
	if err != nil {
		return "", fmt.Errorf("foxops incarnation diff %d: %w", id, err)
	}
	return string(body), nil
}

func incarnationPath(id int) string {
	return "/api/incarnations/" + strconv.Itoa(id)
}

// do sends one request. When out is non-nil the body is decoded into it;
// the raw body is always returned.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return respBody, nil
}

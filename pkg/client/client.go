// Package client is a Go HTTP client for the overlay API served by
// [github.com/surrealdb/surrealoverlay/pkg/surrealoverlay].
//
// Structured error responses are turned back into the server-side sentinel
// errors, so callers can match them with errors.Is across the HTTP boundary:
//
//	_, err := c.UpdateOverlay(ctx, id, patch)
//	switch {
//	case errors.Is(err, models.ErrImmutableFieldChange):
//	case errors.Is(err, store.ErrNotFound):
//	}
//
// Everything else that can go wrong between request and decoded body
// (network failure, a non-JSON response, an undecodable body, an error
// status without a structured body) is reported as a [*TransportError].
//
// The underlying HTTP client has a 30-second timeout. Nothing is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/surrealdb/surrealoverlay/pkg/models"
)

// Client provides typed access to the overlay REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, for example with
// httptest.Server.Client().
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs an HTTP request with JSON headers. Failures to reach
// the server are returned as *TransportError.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	return resp, nil
}

// decodeResponse checks the content type and decodes either the target or
// the structured error body.
func decodeResponse(resp *http.Response, op string, target any) error {
	defer resp.Body.Close()

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type")),
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr models.APIError
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == "" {
			return &TransportError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("API error: body=%s", string(body)),
			}
		}
		return newAPIError(resp.StatusCode, apiErr)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return &TransportError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("failed to decode response: %w", err),
			}
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, method+" "+path, target)
}

func overlayPath(id models.OverlayID) string {
	return "/api/overlays/" + url.PathEscape(id.String())
}

// Health checks the health status of the server.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var result models.HealthStatus
	if err := c.call(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOverlays returns every overlay ordered by ascending zIndex.
func (c *Client) ListOverlays(ctx context.Context) ([]models.Overlay, error) {
	var result []models.Overlay
	if err := c.call(ctx, http.MethodGet, "/api/overlays", nil, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []models.Overlay{}
	}
	return result, nil
}

func (c *Client) GetOverlay(ctx context.Context, id models.OverlayID) (*models.Overlay, error) {
	var result models.Overlay
	if err := c.call(ctx, http.MethodGet, overlayPath(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateOverlay sends creation input; the server fills defaults and
// returns the stored overlay.
func (c *Client) CreateOverlay(ctx context.Context, in models.Fields) (*models.Overlay, error) {
	var result models.Overlay
	if err := c.call(ctx, http.MethodPost, "/api/overlays", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateOverlay sends a partial update and returns the merged overlay.
func (c *Client) UpdateOverlay(ctx context.Context, id models.OverlayID, patch models.Fields) (*models.Overlay, error) {
	var result models.Overlay
	if err := c.call(ctx, http.MethodPut, overlayPath(id), patch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteOverlay(ctx context.Context, id models.OverlayID) error {
	var result models.DeleteResponse
	return c.call(ctx, http.MethodDelete, overlayPath(id), nil, &result)
}

// ReadOnly reports whether the server is in maintenance mode.
func (c *Client) ReadOnly(ctx context.Context) (bool, error) {
	var result models.ReadOnlyStatus
	if err := c.call(ctx, http.MethodGet, "/api/admin/read-only", nil, &result); err != nil {
		return false, err
	}
	return result.ReadOnly, nil
}

func (c *Client) SetReadOnly(ctx context.Context, readOnly bool) error {
	var result models.ReadOnlyStatus
	return c.call(ctx, http.MethodPost, "/api/admin/read-only", models.ReadOnlyStatus{ReadOnly: readOnly}, &result)
}

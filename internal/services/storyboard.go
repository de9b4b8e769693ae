// Storyboard service [Service] implementation
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

const maxErrorBody = 512

// StoryboardClient implements [Service] against the storyboard HTTP API.
type StoryboardClient struct {
	api *APIService
	cfg shared.ServiceConfig
}

// NewStoryboardClient creates a client for the service described by cfg.
func NewStoryboardClient(cfg shared.ServiceConfig, client *http.Client) *StoryboardClient {
	return &StoryboardClient{api: NewAPIService(cfg.BaseURL, client), cfg: cfg}
}

// Name returns the backend name with its base URL.
func (c *StoryboardClient) Name() string {
	return "storyboard (" + c.api.baseURL + ")"
}

// API returns the underlying raw request layer.
func (c *StoryboardClient) API() *APIService {
	return c.api
}

// ArtifactURL returns the absolute URL of an artifact path.
func (c *StoryboardClient) ArtifactURL(path string) string {
	return c.api.URL(path)
}

// Generate starts a job and returns the progress stream body.
func (c *StoryboardClient) Generate(ctx context.Context, description string) (io.ReadCloser, error) {
	data, err := json.Marshal(models.GenerateRequest{UserDescription: description})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	resp, err := c.api.Open(ctx, http.MethodPost, c.cfg.GeneratePath, data, "text/event-stream")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

// EditFrame sends an edit request. The response body is decoded whatever the status code,
// since the service reports rejections as {"success": false, "message": ...} with 4xx/5xx codes.
func (c *StoryboardClient) EditFrame(ctx context.Context, req models.EditRequest) (*models.EditResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edit request: %w", err)
	}

	resp, err := c.api.Post(ctx, c.cfg.EditPath, data)
	if err != nil {
		return nil, err
	}

	var out models.EditResponse
	if err := resp.Decode(&out); err != nil {
		if !resp.OK() {
			return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, snippet(resp.Body))
		}
		return nil, err
	}

	if !resp.OK() && out.Success {
		out.Success = false
	}
	return &out, nil
}

// Health fetches the service status.
func (c *StoryboardClient) Health(ctx context.Context) (*models.Health, error) {
	resp, err := c.api.Get(ctx, c.cfg.HealthPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	var h models.Health
	if err := resp.Decode(&h); err != nil {
		return nil, err
	}
	if !h.Healthy() {
		return &h, fmt.Errorf("%w: status %q", shared.ErrServiceUnavailable, h.Status)
	}
	return &h, nil
}

// Fetch opens an artifact. A 404 is reported as [shared.ErrNotFound].
func (c *StoryboardClient) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := c.api.Open(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, snippet(body))
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

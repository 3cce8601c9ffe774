package appointment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client defines the appointment service operations used by the deletion
// workflow.
type Client interface {
	DeleteAsker(ctx context.Context, askerID string) error
	DeleteConsultant(ctx context.Context, consultantID string) error
}

// HTTPClient talks to the external appointment service.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets the HTTP client used for appointment service calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates an appointment service client.
func NewHTTPClient(baseURL, apiKey string, opts ...Option) *HTTPClient {
	client := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *HTTPClient) DeleteAsker(ctx context.Context, askerID string) error {
	return c.delete(ctx, "askers/"+askerID)
}

func (c *HTTPClient) DeleteConsultant(ctx context.Context, consultantID string) error {
	return c.delete(ctx, "consultants/"+consultantID)
}

func (c *HTTPClient) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("appointment service call failed: %w", err)
	}
	defer resp.Body.Close()

	// The appointment service keeps no record for accounts that never booked,
	// so a 404 is as good as a completed delete.
	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("No appointment data for account", "path", path)
		return nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("appointment service returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Package platform is a thin HTTP client for the content platform's item and
// annotation APIs.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
)

const defaultMaxItemBytes = 50 << 20

// Client talks to the content platform. It implements port.ItemSource,
// port.Annotator, and port.ItemUpdater.
type Client struct {
	baseURL  string
	token    string
	maxBytes int64
	client   *http.Client
}

// NewClient creates a platform client from config.
func NewClient(cfg *config.PlatformConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxBytes := cfg.MaxItemMB << 20
	if maxBytes <= 0 {
		maxBytes = defaultMaxItemBytes
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.APIToken,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: timeout},
	}
}

// Ping probes the platform base URL. Any response below 500 means the
// platform is reachable; auth failures are a configuration problem, not an
// availability one.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("platform unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// GetItem fetches an item descriptor.
func (c *Client) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/items/%s", c.baseURL, id))
	if err != nil {
		return nil, err
	}
	var item domain.Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decoding item %s: %w", id, err)
	}
	return &item, nil
}

// Stream downloads an item's binary content, bounded by the configured size
// limit.
func (c *Client) Stream(ctx context.Context, id string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/items/%s/stream", c.baseURL, id))
}

// UploadAnnotations posts an annotation collection for an item.
func (c *Client) UploadAnnotations(ctx context.Context, itemID string, annotations []domain.Annotation) error {
	payload := map[string]interface{}{"annotations": annotations}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("%s/items/%s/annotations", c.baseURL, itemID), payload)
}

// SetDescription updates an item's description field.
func (c *Client) SetDescription(ctx context.Context, itemID, description string) error {
	payload := map[string]interface{}{"description": description}
	return c.send(ctx, http.MethodPatch, fmt.Sprintf("%s/items/%s", c.baseURL, itemID), payload)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling platform API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("item body exceeds %d byte limit", c.maxBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("platform API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, url string, payload interface{}) error {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling platform API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("platform API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

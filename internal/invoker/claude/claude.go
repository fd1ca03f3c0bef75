// Package claude invokes Anthropic Claude models through the Vertex AI
// rawPredict endpoint.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/invoker"
	"vertexadapters/internal/port"
)

const (
	defaultRegion    = "us-east5"
	anthropicVersion = "vertex-2023-10-16"
)

func init() {
	invoker.Register("claude", New)
}

// Invoker sends one user message of interleaved text/image blocks to Claude.
type Invoker struct {
	cfg      config.ModelConfig
	endpoint string
	tokens   gcpauth.TokenProvider
	client   *http.Client
}

// New creates a claude invoker bound to the service account's project and
// region.
func New(_ context.Context, cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) (port.ModelInvoker, error) {
	region := cfg.Region
	if region == "" {
		region = sa.Region(defaultRegion)
	}
	endpoint := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/anthropic/models/%s:rawPredict",
		region, sa.ProjectID, region, cfg.ModelID,
	)
	return NewWithEndpoint(cfg, sa, endpoint), nil
}

// NewWithEndpoint creates an invoker pointing at a custom endpoint (for
// testing).
func NewWithEndpoint(cfg *config.ModelConfig, tokens gcpauth.TokenProvider, endpoint string) *Invoker {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Invoker{
		cfg:      *cfg,
		endpoint: endpoint,
		tokens:   tokens,
		client:   &http.Client{Timeout: timeout},
	}
}

func (i *Invoker) Name() string { return "claude" }

func (i *Invoker) Capabilities() domain.Capabilities {
	return domain.Capabilities{Text: true, Image: true}
}

func (i *Invoker) Info() domain.ModelInfo {
	return domain.ModelInfo{Name: i.Name(), ModelID: i.cfg.ModelID, Confidence: 1.0}
}

// Invoke sends the resolved parts as one user message, preserving encounter
// order, and returns the first content block's text.
func (i *Invoker) Invoke(ctx context.Context, req *domain.ResolvedRequest) (string, error) {
	blocks := buildContentBlocks(req.Parts)
	reqBody := map[string]interface{}{
		"anthropic_version": anthropicVersion,
		"max_tokens":        i.cfg.MaxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": blocks},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	tok, err := i.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching access token: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+tok.Value)

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling vertex API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vertex API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return parseResponse(respBody)
}

func buildContentBlocks(parts []domain.ContentPart) []map[string]interface{} {
	blocks := make([]map[string]interface{}, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case domain.PartText:
			blocks = append(blocks, map[string]interface{}{
				"type": "text",
				"text": part.Text,
			})
		case domain.PartImage:
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": part.Image.MIMEType,
					"data":       base64.StdEncoding.EncodeToString(part.Image.Data),
				},
			})
		}
	}
	return blocks
}

// apiResponse models the Anthropic messages response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w (raw: %s)", err, truncate(string(body), 500))
	}
	if len(resp.Content) == 0 {
		return "", domain.Skipf("empty response from claude")
	}
	return resp.Content[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

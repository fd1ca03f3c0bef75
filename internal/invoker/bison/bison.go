// Package bison invokes the PaLM chat models through the Vertex AI predict
// endpoint.
package bison

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
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/invoker"
	"vertexadapters/internal/port"
)

const defaultRegion = "us-east5"

func init() {
	invoker.Register("bison", New)
}

// Invoker is a single-turn chat invoker for chat-bison style models.
type Invoker struct {
	cfg      config.ModelConfig
	endpoint string
	tokens   gcpauth.TokenProvider
	client   *http.Client
}

// New creates a bison invoker bound to the service account's project and
// region.
func New(_ context.Context, cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) (port.ModelInvoker, error) {
	region := cfg.Region
	if region == "" {
		region = sa.Region(defaultRegion)
	}
	endpoint := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
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

func (i *Invoker) Name() string { return "bison" }

func (i *Invoker) Capabilities() domain.Capabilities {
	return domain.Capabilities{Text: true, ContextPart: true, RequireText: true}
}

func (i *Invoker) Info() domain.ModelInfo {
	return domain.ModelInfo{Name: i.Name(), ModelID: i.cfg.ModelID, Confidence: 1.0}
}

// Invoke opens a stateless single-turn chat: one user message, optional
// context, sampling parameters from config. A context part on the request
// wins over the configured system prompt.
func (i *Invoker) Invoke(ctx context.Context, req *domain.ResolvedRequest) (string, error) {
	instance := map[string]interface{}{
		"messages": []map[string]interface{}{
			{"author": "user", "content": req.Text},
		},
	}
	if chatContext := i.chatContext(req); chatContext != "" {
		instance["context"] = chatContext
	}
	reqBody := map[string]interface{}{
		"instances": []map[string]interface{}{instance},
		"parameters": map[string]interface{}{
			"temperature":     i.cfg.Temperature,
			"maxOutputTokens": i.cfg.MaxTokens,
			"topP":            i.cfg.TopP,
			"topK":            i.cfg.TopK,
		},
	}

	body, err := i.post(ctx, reqBody)
	if err != nil {
		return "", err
	}
	return parseResponse(body)
}

func (i *Invoker) chatContext(req *domain.ResolvedRequest) string {
	if req.Context != "" {
		return req.Context
	}
	return i.cfg.SystemPrompt
}

func (i *Invoker) post(ctx context.Context, payload interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tok, err := i.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.Value)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vertex API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vertex API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// apiResponse models the Vertex chat predict response.
type apiResponse struct {
	Predictions []struct {
		Candidates []struct {
			Author  string `json:"author"`
			Content string `json:"content"`
		} `json:"candidates"`
	} `json:"predictions"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w (raw: %s)", err, truncate(string(body), 500))
	}
	if len(resp.Predictions) == 0 || len(resp.Predictions[0].Candidates) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return resp.Predictions[0].Candidates[0].Content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

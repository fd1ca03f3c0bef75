// Package mistralocr invokes the Mistral OCR model through the Vertex AI
// rawPredict endpoint.
package mistralocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/invoker"
	"vertexadapters/internal/port"
)

const defaultRegion = "us-central1"

func init() {
	invoker.Register("mistral-ocr", New)
}

// Invoker posts a document data URL for OCR and returns the concatenated
// per-page markdown.
type Invoker struct {
	cfg      config.ModelConfig
	endpoint string
	tokens   gcpauth.TokenProvider
	client   *http.Client
}

// New creates an OCR invoker bound to the service account's project and
// region.
func New(_ context.Context, cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) (port.ModelInvoker, error) {
	region := cfg.Region
	if region == "" {
		region = sa.Region(defaultRegion)
	}
	endpoint := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/mistralai/models/%s:rawPredict",
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

func (i *Invoker) Name() string { return "mistral-ocr" }

func (i *Invoker) Capabilities() domain.Capabilities {
	return domain.Capabilities{Image: true, Document: true, FirstMatchWins: true}
}

func (i *Invoker) Info() domain.ModelInfo {
	return domain.ModelInfo{Name: i.Name(), ModelID: i.cfg.ModelID, Confidence: 1.0}
}

// Invoke posts the document URL and joins each returned page's markdown with
// blank lines. An OCR result with no text is a skip, not an error.
func (i *Invoker) Invoke(ctx context.Context, req *domain.ResolvedRequest) (string, error) {
	reqBody := map[string]interface{}{
		"model": i.cfg.ModelID,
		"document": map[string]interface{}{
			"type":         "document_url",
			"document_url": req.DocumentURL,
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
	httpReq.Header.Set("Accept", "application/json")
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
		return "", fmt.Errorf("OCR request failed (status %d): %s", resp.StatusCode, truncate(string(respBody), 2048))
	}
	return parseResponse(respBody)
}

// ocrResponse models the rawPredict OCR response.
type ocrResponse struct {
	Pages []struct {
		Markdown string `json:"markdown"`
	} `json:"pages"`
}

func parseResponse(body []byte) (string, error) {
	var resp ocrResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding OCR response: %w (raw: %s)", err, truncate(string(body), 2048))
	}

	var b strings.Builder
	for _, page := range resp.Pages {
		if page.Markdown == "" {
			continue
		}
		b.WriteString(page.Markdown)
		b.WriteString("\n\n")
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", domain.Skipf("no OCR text extracted")
	}
	return text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Package gemini invokes Gemini multimodal models through the Vertex backend
// of the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/invoker"
	"vertexadapters/internal/port"
)

const defaultRegion = "us-east5"

func init() {
	invoker.Register("gemini", New)
}

// Invoker issues one multimodal generate call per resolved request.
type Invoker struct {
	cfg    config.ModelConfig
	client *genai.Client
}

// New creates a gemini invoker with a Vertex-backed GenAI client using the
// resolved service account.
func New(ctx context.Context, cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) (port.ModelInvoker, error) {
	creds, err := sa.Credentials()
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendVertexAI,
		Project:     sa.ProjectID,
		Location:    resolveRegion(cfg, sa),
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return NewWithClient(cfg, client), nil
}

// resolveRegion picks the model region: explicit config first, then the
// credential document's location, then the chat-provider default.
func resolveRegion(cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) string {
	if cfg.Region != "" {
		return cfg.Region
	}
	return sa.Region(defaultRegion)
}

// NewWithClient creates an invoker over an existing GenAI client.
func NewWithClient(cfg *config.ModelConfig, client *genai.Client) *Invoker {
	return &Invoker{cfg: *cfg, client: client}
}

func (i *Invoker) Name() string { return "gemini" }

func (i *Invoker) Capabilities() domain.Capabilities {
	return domain.Capabilities{Text: true, Image: true, RequireText: true, RequireImage: true}
}

func (i *Invoker) Info() domain.ModelInfo {
	return domain.ModelInfo{Name: i.Name(), ModelID: i.cfg.ModelID, Confidence: 1.0}
}

// Invoke sends the resolved parts in encounter order with the configured
// system instruction and sampling parameters, and accepts output only when
// generation finished with the normal stop condition.
func (i *Invoker) Invoke(ctx context.Context, req *domain.ResolvedRequest) (string, error) {
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: buildParts(req.Parts)}}

	resp, err := i.client.Models.GenerateContent(ctx, i.cfg.ModelID, contents, i.generateConfig())
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	return textFromResponse(resp)
}

func (i *Invoker) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(i.cfg.SystemPrompt)},
		},
		Temperature:     genai.Ptr(float32(i.cfg.Temperature)),
		TopP:            genai.Ptr(float32(i.cfg.TopP)),
		TopK:            genai.Ptr(float32(i.cfg.TopK)),
		MaxOutputTokens: int32(i.cfg.MaxTokens),
	}
}

func buildParts(parts []domain.ContentPart) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case domain.PartText:
			out = append(out, genai.NewPartFromText(part.Text))
		case domain.PartImage:
			out = append(out, genai.NewPartFromBytes(part.Image.Data, part.Image.MIMEType))
		}
	}
	return out
}

// textFromResponse pulls the first candidate's text. A finish reason other
// than STOP (safety block, length cutoff) drops the prompt as a skip rather
// than capturing a partial result.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop {
		return "", domain.Skipf("generation finished with reason %s, dropping prompt", candidate.FinishReason)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty response from API: no text")
	}
	return b.String(), nil
}

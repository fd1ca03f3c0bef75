package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/gcpauth"
)

func candidateResponse(reason genai.FinishReason, texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, genai.NewPartFromText(text))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:      &genai.Content{Parts: parts},
				FinishReason: reason,
			},
		},
	}
}

func TestTextFromResponse_Stop(t *testing.T) {
	text, err := textFromResponse(candidateResponse(genai.FinishReasonStop, "part one ", "part two"))
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)
}

func TestTextFromResponse_NonStopFinishReasonIsSkip(t *testing.T) {
	for _, reason := range []genai.FinishReason{genai.FinishReasonSafety, genai.FinishReasonMaxTokens} {
		_, err := textFromResponse(candidateResponse(reason, "partial output"))
		require.Error(t, err)
		assert.True(t, domain.IsSkip(err))
	}
}

func TestTextFromResponse_NoCandidates(t *testing.T) {
	_, err := textFromResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)
	assert.False(t, domain.IsSkip(err))
	assert.Contains(t, err.Error(), "no candidates")
}

func TestTextFromResponse_EmptyParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{}, FinishReason: genai.FinishReasonStop},
		},
	}
	_, err := textFromResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parts")
}

func TestBuildParts_PreservesOrder(t *testing.T) {
	parts := buildParts([]domain.ContentPart{
		{Kind: domain.PartImage, Image: &domain.ImageBlock{MIMEType: "image/png", Data: []byte{0x01}}},
		{Kind: domain.PartText, Text: "describe this"},
	})
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, "describe this", parts[1].Text)
}

func TestGenerateConfig(t *testing.T) {
	inv := NewWithClient(&config.ModelConfig{
		ModelID:      "gemini-2.5-flash",
		MaxTokens:    1024,
		Temperature:  0.2,
		TopP:         0.7,
		TopK:         40,
		SystemPrompt: "be concise",
	}, nil)

	genCfg := inv.generateConfig()
	require.NotNil(t, genCfg.Temperature)
	assert.InDelta(t, 0.2, float64(*genCfg.Temperature), 1e-6)
	require.NotNil(t, genCfg.TopP)
	assert.InDelta(t, 0.7, float64(*genCfg.TopP), 1e-6)
	require.NotNil(t, genCfg.TopK)
	assert.InDelta(t, 40, float64(*genCfg.TopK), 1e-6)
	assert.Equal(t, int32(1024), genCfg.MaxOutputTokens)
	require.NotNil(t, genCfg.SystemInstruction)
	require.Len(t, genCfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "be concise", genCfg.SystemInstruction.Parts[0].Text)
}

func TestResolveRegion(t *testing.T) {
	assert.Equal(t, "us-east5", resolveRegion(&config.ModelConfig{}, &gcpauth.ServiceAccount{}))
	assert.Equal(t, "europe-west1", resolveRegion(&config.ModelConfig{}, &gcpauth.ServiceAccount{Location: "europe-west1"}))
	assert.Equal(t, "us-west4", resolveRegion(&config.ModelConfig{Region: "us-west4"}, &gcpauth.ServiceAccount{Location: "europe-west1"}))
}

func TestCapabilities(t *testing.T) {
	inv := NewWithClient(&config.ModelConfig{}, nil)
	caps := inv.Capabilities()
	assert.True(t, caps.Text)
	assert.True(t, caps.Image)
	assert.True(t, caps.RequireText)
	assert.True(t, caps.RequireImage)
	assert.False(t, caps.Document)
}

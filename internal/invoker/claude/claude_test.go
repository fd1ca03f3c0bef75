package claude_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/invoker/claude"
)

type staticTokens struct{ value string }

func (s staticTokens) Token(context.Context) (*auth.Token, error) {
	return &auth.Token{Value: s.value}, nil
}

func newTestInvoker(serverURL string) *claude.Invoker {
	cfg := &config.ModelConfig{
		ModelID:     "claude-opus-4@20250514",
		MaxTokens:   1024,
		TimeoutSecs: 30,
	}
	return claude.NewWithEndpoint(cfg, staticTokens{value: "test-token"}, serverURL)
}

func messagesResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
	}
}

func TestInvoke_TextAndImageBlocksInOrder(t *testing.T) {
	imageData := []byte("imagebytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		assert.Equal(t, "vertex-2023-10-16", reqBody["anthropic_version"])
		assert.Equal(t, float64(1024), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		blocks := msg["content"].([]interface{})
		require.Len(t, blocks, 2)

		imageBlock := blocks[0].(map[string]interface{})
		assert.Equal(t, "image", imageBlock["type"])
		source := imageBlock["source"].(map[string]interface{})
		assert.Equal(t, "base64", source["type"])
		assert.Equal(t, "image/webp", source["media_type"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(imageData), source["data"])

		textBlock := blocks[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Equal(t, "describe this", textBlock["text"])

		require.NoError(t, json.NewEncoder(w).Encode(messagesResponse("a description")))
	}))
	defer server.Close()

	inv := newTestInvoker(server.URL)
	text, err := inv.Invoke(context.Background(), &domain.ResolvedRequest{
		PromptID: "p1",
		Parts: []domain.ContentPart{
			{Kind: domain.PartImage, Image: &domain.ImageBlock{MIMEType: "image/webp", Data: imageData}},
			{Kind: domain.PartText, Text: "describe this"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a description", text)
}

func TestInvoke_EmptyContentIsSkip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	inv := newTestInvoker(server.URL)
	_, err := inv.Invoke(context.Background(), &domain.ResolvedRequest{
		Parts: []domain.ContentPart{{Kind: domain.PartText, Text: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsSkip(err))
}

func TestInvoke_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid request"}}`))
	}))
	defer server.Close()

	inv := newTestInvoker(server.URL)
	_, err := inv.Invoke(context.Background(), &domain.ResolvedRequest{
		Parts: []domain.ContentPart{{Kind: domain.PartText, Text: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.False(t, domain.IsSkip(err))
}

func TestCapabilities(t *testing.T) {
	inv := newTestInvoker("http://unused")
	caps := inv.Capabilities()
	assert.True(t, caps.Text)
	assert.True(t, caps.Image)
	assert.False(t, caps.RequireImage)
	assert.False(t, caps.Document)
}

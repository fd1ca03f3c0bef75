package prompt

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexadapters/internal/domain"
)

// fakeItemSource serves item bytes from a map.
type fakeItemSource struct {
	streams map[string][]byte
}

func (f *fakeItemSource) GetItem(_ context.Context, id string) (*domain.Item, error) {
	return &domain.Item{ID: id}, nil
}

func (f *fakeItemSource) Stream(_ context.Context, id string) ([]byte, error) {
	data, ok := f.streams[id]
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return data, nil
}

var (
	chatCaps       = domain.Capabilities{Text: true, ContextPart: true, RequireText: true}
	multimodalCaps = domain.Capabilities{Text: true, Image: true, RequireText: true, RequireImage: true}
	claudeCaps     = domain.Capabilities{Text: true, Image: true}
	ocrCaps        = domain.Capabilities{Image: true, Document: true, FirstMatchWins: true}
)

func newTestExtractor(streams map[string][]byte) *Extractor {
	return NewExtractor(&fakeItemSource{streams: streams})
}

func TestExtract_ChatTextOnly(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{{MimeType: "text/plain", Value: "Hello"}}

	req, err := e.Extract(context.Background(), "p1", parts, chatCaps)
	require.NoError(t, err)
	assert.Equal(t, "p1", req.PromptID)
	assert.Equal(t, "Hello", req.Text)
	assert.Empty(t, req.Context)
}

func TestExtract_ChatWithContextPart(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{
		{MimeType: "text/context", Value: "You are terse."},
		{MimeType: "text/plain", Value: "Hello"},
	}

	req, err := e.Extract(context.Background(), "p1", parts, chatCaps)
	require.NoError(t, err)
	assert.Equal(t, "Hello", req.Text)
	assert.Equal(t, "You are terse.", req.Context)
}

func TestExtract_ChatMissingText(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{{MimeType: "image/png", Value: "/items/x/stream"}}

	_, err := e.Extract(context.Background(), "p1", parts, chatCaps)
	require.Error(t, err)
	assert.True(t, domain.IsSkip(err))
	assert.Contains(t, err.Error(), "missing a text prompt")
}

func TestExtract_UnknownMimetypeNeverFatal(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{
		{MimeType: "audio/wav", Value: "ignored"},
		{MimeType: "text/plain", Value: "Hello"},
	}

	req, err := e.Extract(context.Background(), "p1", parts, chatCaps)
	require.NoError(t, err)
	assert.Equal(t, "Hello", req.Text)
}

func TestExtract_MultimodalPreservesEncounterOrder(t *testing.T) {
	e := newTestExtractor(map[string][]byte{"abc123": []byte("imagebytes")})
	parts := []domain.PromptPart{
		{MimeType: "image/png", Value: "https://gate.example.com/items/abc123/stream?x=1"},
		{MimeType: "text/plain", Value: "describe this"},
	}

	req, err := e.Extract(context.Background(), "p1", parts, multimodalCaps)
	require.NoError(t, err)
	require.Len(t, req.Parts, 2)
	assert.Equal(t, domain.PartImage, req.Parts[0].Kind)
	assert.Equal(t, "image/png", req.Parts[0].Image.MIMEType)
	assert.Equal(t, []byte("imagebytes"), req.Parts[0].Image.Data)
	assert.Equal(t, domain.PartText, req.Parts[1].Kind)
	assert.Equal(t, "describe this", req.Parts[1].Text)
}

func TestExtract_MultimodalMissingImage(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{{MimeType: "text/plain", Value: "describe this"}}

	_, err := e.Extract(context.Background(), "p1", parts, multimodalCaps)
	require.Error(t, err)
	assert.True(t, domain.IsSkip(err))
	assert.Contains(t, err.Error(), "missing an image prompt")
}

func TestExtract_MultimodalUnresolvableReference(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{
		{MimeType: "image/png", Value: "/items/missing/stream"},
		{MimeType: "text/plain", Value: "describe this"},
	}

	_, err := e.Extract(context.Background(), "p1", parts, multimodalCaps)
	require.Error(t, err)
	assert.True(t, domain.IsSkip(err))
	assert.Contains(t, err.Error(), "resolving referenced item")
}

func TestExtract_ClaudeAnyContent(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{{MimeType: "text/plain", Value: "just text"}}

	req, err := e.Extract(context.Background(), "p1", parts, claudeCaps)
	require.NoError(t, err)
	require.Len(t, req.Parts, 1)
	assert.Equal(t, "just text", req.Parts[0].Text)
}

func TestExtract_ClaudeNoContent(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{{MimeType: "audio/wav", Value: "nope"}}

	_, err := e.Extract(context.Background(), "p1", parts, claudeCaps)
	require.Error(t, err)
	assert.True(t, domain.IsSkip(err))
}

func TestExtract_OCRFirstMatchWins(t *testing.T) {
	e := newTestExtractor(map[string][]byte{
		"first":  []byte{0x01},
		"second": []byte{0x02},
	})
	parts := []domain.PromptPart{
		{MimeType: "image/jpeg", Value: "/items/first/stream"},
		{MimeType: "application/pdf", Value: "/items/second/stream"},
	}

	req, err := e.Extract(context.Background(), "p1", parts, ocrCaps)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AQ==", req.DocumentURL)
}

func TestExtract_OCRPDFReference(t *testing.T) {
	e := newTestExtractor(map[string][]byte{"doc1": []byte("%PDF")})
	parts := []domain.PromptPart{
		{MimeType: "application/pdf", Value: "/items/doc1/stream"},
	}

	req, err := e.Extract(context.Background(), "p1", parts, ocrCaps)
	require.NoError(t, err)
	assert.Equal(t, DataURL("application/pdf", []byte("%PDF")), req.DocumentURL)
}

func TestExtract_OCRNoResolvablePart(t *testing.T) {
	e := newTestExtractor(nil)
	parts := []domain.PromptPart{{MimeType: "text/plain", Value: "words"}}

	_, err := e.Extract(context.Background(), "p1", parts, ocrCaps)
	require.Error(t, err)
	assert.True(t, domain.IsSkip(err))
	assert.Contains(t, err.Error(), "no resolvable image or PDF part")
}

func TestExtract_NoPanicOnEmptyParts(t *testing.T) {
	e := newTestExtractor(nil)

	for _, caps := range []domain.Capabilities{chatCaps, multimodalCaps, claudeCaps, ocrCaps} {
		_, err := e.Extract(context.Background(), "p1", nil, caps)
		require.Error(t, err)
		assert.True(t, domain.IsSkip(err))
	}
}

func TestExtract_SkipCarriesCause(t *testing.T) {
	e := NewExtractor(&fakeItemSource{})
	parts := []domain.PromptPart{{MimeType: "image/png", Value: "/items/gone/stream"}}

	_, err := e.Extract(context.Background(), "p1", parts, ocrCaps)
	require.Error(t, err)
	var skip *domain.SkipError
	require.True(t, errors.As(err, &skip))
	assert.NotNil(t, skip.Err)
}

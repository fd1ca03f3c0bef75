package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexadapters/internal/domain"
)

func promptItem(mimetype, dltype string) *domain.Item {
	return &domain.Item{
		ID:       "item-1",
		MimeType: mimetype,
		Metadata: map[string]interface{}{
			"system": map[string]interface{}{
				"shebang": map[string]interface{}{"dltype": dltype},
			},
		},
	}
}

func TestClassifyItem_Prompt(t *testing.T) {
	assert.Equal(t, domain.ItemPrompt, ClassifyItem(promptItem("application/json", "prompt"), false))
}

func TestClassifyItem_JSONWithoutPromptType(t *testing.T) {
	assert.Equal(t, domain.ItemUnsupported, ClassifyItem(promptItem("application/json", "item"), false))
}

func TestClassifyItem_DirectFile(t *testing.T) {
	image := &domain.Item{MimeType: "image/png"}
	pdf := &domain.Item{MimeType: "application/pdf"}

	assert.Equal(t, domain.ItemDirectFile, ClassifyItem(image, true))
	assert.Equal(t, domain.ItemDirectFile, ClassifyItem(pdf, true))

	// Adapters without document support drop direct files.
	assert.Equal(t, domain.ItemUnsupported, ClassifyItem(image, false))
	assert.Equal(t, domain.ItemUnsupported, ClassifyItem(pdf, false))
}

func TestClassifyItem_Unsupported(t *testing.T) {
	assert.Equal(t, domain.ItemUnsupported, ClassifyItem(&domain.Item{MimeType: "video/mp4"}, true))
}

func TestDecodeEnvelope(t *testing.T) {
	data := []byte(`{"prompts":{"p1":[{"mimetype":"text/plain","value":"Hello"}]}}`)
	env, err := DecodeEnvelope(data)
	require.NoError(t, err)
	require.Contains(t, env.Prompts, "p1")
	assert.Equal(t, "Hello", env.Prompts["p1"][0].Value)

	_, err = DecodeEnvelope([]byte("not json"))
	assert.Error(t, err)
}

func TestRefItemID(t *testing.T) {
	assert.Equal(t, "abc123", RefItemID("https://gate.example.com/api/v1/items/abc123/stream?x=1"))
	assert.Equal(t, "abc123", RefItemID("/items/abc123/stream"))
	assert.Equal(t, "abc123", RefItemID("/datasets/d1/items/abc123/stream/thumbnail"))
}

func TestDataURL(t *testing.T) {
	url := DataURL("image/png", []byte{0x01, 0x02})
	assert.Equal(t, "data:image/png;base64,AQI=", url)
}

// Package prompt implements the shared prompt-item contract: item
// classification, envelope decoding, and extraction of provider requests
// from typed prompt parts.
package prompt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"vertexadapters/internal/domain"
)

// ClassifyItem decides how an inbound item is handled. Prompt items are JSON
// with metadata system.shebang.dltype == "prompt"; direct image/PDF files are
// accepted only by adapters that opt in (OCR). Everything else is dropped.
func ClassifyItem(item *domain.Item, allowDirectFile bool) domain.ItemClass {
	if strings.Contains(item.MimeType, "json") && item.DLType() == "prompt" {
		return domain.ItemPrompt
	}
	if allowDirectFile &&
		(strings.HasPrefix(item.MimeType, "image/") || strings.HasPrefix(item.MimeType, "application/pdf")) {
		return domain.ItemDirectFile
	}
	return domain.ItemUnsupported
}

// DecodeEnvelope parses a downloaded prompt item body.
func DecodeEnvelope(data []byte) (*domain.PromptEnvelope, error) {
	var env domain.PromptEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding prompt envelope: %w", err)
	}
	return &env, nil
}

// RefItemID extracts the referenced item id from a part value URL of the
// form .../items/{id}/stream... : the text between "/items/" and the next
// "/stream".
func RefItemID(url string) string {
	s := url
	if i := strings.Index(s, "/stream"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "/items/"); i >= 0 {
		s = s[i+len("/items/"):]
	}
	return s
}

// DataURL wraps raw bytes as a data URL for document-style provider payloads.
func DataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

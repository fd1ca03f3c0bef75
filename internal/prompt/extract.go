package prompt

import (
	"context"

	"github.com/sirupsen/logrus"

	"vertexadapters/internal/domain"
	"vertexadapters/internal/port"
)

// Extractor builds provider requests from prompt parts, resolving referenced
// items through the platform.
type Extractor struct {
	items port.ItemSource
}

// NewExtractor creates an Extractor backed by the given item source.
func NewExtractor(items port.ItemSource) *Extractor {
	return &Extractor{items: items}
}

// Extract walks the entry's parts in order and assembles the request shape
// the capabilities call for. Missing required parts and unresolvable
// references come back as SkipErrors; the entry is dropped, never the batch.
func (e *Extractor) Extract(ctx context.Context, promptID string, parts []domain.PromptPart, caps domain.Capabilities) (*domain.ResolvedRequest, error) {
	req := &domain.ResolvedRequest{PromptID: promptID}
	var hasText, hasImage bool

	for _, part := range parts {
		kind := domain.ClassifyPart(part.MimeType)
		switch kind {
		case domain.PartContext:
			if !caps.ContextPart {
				warnPart(promptID, part.MimeType)
				continue
			}
			req.Context = part.Value

		case domain.PartText:
			if !caps.Text {
				warnPart(promptID, part.MimeType)
				continue
			}
			req.Text = part.Value
			hasText = true
			if caps.Image {
				req.Parts = append(req.Parts, domain.ContentPart{Kind: domain.PartText, Text: part.Value})
			}

		case domain.PartImage:
			if !caps.Image && !caps.Document {
				warnPart(promptID, part.MimeType)
				continue
			}
			id := RefItemID(part.Value)
			data, err := e.items.Stream(ctx, id)
			if err != nil {
				return nil, domain.SkipCause(err, "resolving referenced item %s for prompt %s", id, promptID)
			}
			mime := domain.ImageMIME(part.MimeType)
			if caps.Document {
				req.DocumentURL = DataURL(mime, data)
				if caps.FirstMatchWins {
					return req, nil
				}
				continue
			}
			req.Parts = append(req.Parts, domain.ContentPart{
				Kind:  domain.PartImage,
				Image: &domain.ImageBlock{MIMEType: mime, Data: data},
			})
			hasImage = true

		case domain.PartPDF:
			if !caps.Document {
				warnPart(promptID, part.MimeType)
				continue
			}
			id := RefItemID(part.Value)
			data, err := e.items.Stream(ctx, id)
			if err != nil {
				return nil, domain.SkipCause(err, "resolving referenced item %s for prompt %s", id, promptID)
			}
			req.DocumentURL = DataURL("application/pdf", data)
			if caps.FirstMatchWins {
				return req, nil
			}

		default:
			warnPart(promptID, part.MimeType)
		}
	}

	if caps.RequireText && !hasText {
		return nil, domain.Skipf("%s is missing a text prompt", promptID)
	}
	if caps.RequireImage && !hasImage {
		return nil, domain.Skipf("%s is missing an image prompt", promptID)
	}
	if caps.Document && req.DocumentURL == "" {
		return nil, domain.Skipf("%s has no resolvable image or PDF part", promptID)
	}
	if caps.Image && !caps.Document && len(req.Parts) == 0 {
		return nil, domain.Skipf("no valid content found in prompt %s", promptID)
	}
	if caps.Text && !caps.Image && req.Text == "" {
		return nil, domain.Skipf("%s is missing a text prompt", promptID)
	}

	return req, nil
}

func warnPart(promptID, mimetype string) {
	logrus.WithFields(logrus.Fields{
		"prompt_id": promptID,
		"mimetype":  mimetype,
	}).Warn("prompt part mimetype is not supported by this adapter, skipping part")
}

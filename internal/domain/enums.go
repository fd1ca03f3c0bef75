package domain

import "strings"

// PartKind classifies a prompt part by its declared mimetype.
type PartKind string

const (
	PartText        PartKind = "text"
	PartImage       PartKind = "image"
	PartPDF         PartKind = "pdf"
	PartContext     PartKind = "context"
	PartUnsupported PartKind = "unsupported"
)

// ClassifyPart maps a part mimetype to a PartKind using substring matching,
// the same loose rules the platform's prompt items rely on. Context is
// checked before text because "context" itself contains "text".
func ClassifyPart(mimetype string) PartKind {
	switch {
	case strings.Contains(mimetype, "context"):
		return PartContext
	case strings.Contains(mimetype, "application/pdf"):
		return PartPDF
	case strings.Contains(mimetype, "image"):
		return PartImage
	case strings.Contains(mimetype, "text"):
		return PartText
	default:
		return PartUnsupported
	}
}

// ItemClass is the result of inbound item classification.
type ItemClass string

const (
	ItemPrompt      ItemClass = "prompt"
	ItemDirectFile  ItemClass = "direct_file"
	ItemUnsupported ItemClass = "unsupported"
)

// ImageMIME maps a loose image mimetype to the concrete MIME string used in
// provider payloads. Unrecognized subtypes fall back to image/jpeg.
func ImageMIME(mimetype string) string {
	switch {
	case strings.Contains(mimetype, "jpeg"), strings.Contains(mimetype, "jpg"):
		return "image/jpeg"
	case strings.Contains(mimetype, "png"):
		return "image/png"
	case strings.Contains(mimetype, "gif"):
		return "image/gif"
	case strings.Contains(mimetype, "webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

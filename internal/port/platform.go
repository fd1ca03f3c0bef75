package port

import (
	"context"

	"vertexadapters/internal/domain"
)

// ItemSource fetches item descriptors and raw item bytes from the content
// platform.
type ItemSource interface {
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	// Stream downloads the item's binary content.
	Stream(ctx context.Context, id string) ([]byte, error)
}

// Annotator persists annotation collections back to the platform.
type Annotator interface {
	UploadAnnotations(ctx context.Context, itemID string, annotations []domain.Annotation) error
}

// ItemUpdater writes item-level fields back to the platform. Used by the OCR
// adapter for direct files, whose text lands on the item description rather
// than an annotation.
type ItemUpdater interface {
	SetDescription(ctx context.Context, itemID, description string) error
}

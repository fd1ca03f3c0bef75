package port

import (
	"context"

	"vertexadapters/internal/domain"
)

// ModelInvoker abstracts a single outbound call to a hosted model. Invoke
// returns the raw provider text for one resolved request; a SkipError marks
// output that should be dropped without failing the batch.
type ModelInvoker interface {
	// Name is the registered provider name.
	Name() string
	// Capabilities reports which prompt parts the provider consumes.
	Capabilities() domain.Capabilities
	// Info returns the provenance block stamped on produced annotations.
	Info() domain.ModelInfo
	Invoke(ctx context.Context, req *domain.ResolvedRequest) (string, error)
}

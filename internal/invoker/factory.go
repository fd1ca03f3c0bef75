// Package invoker holds the provider invoker registry. Provider packages
// register themselves in init(); callers blank-import the providers they
// want available.
package invoker

import (
	"context"
	"fmt"
	"sort"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/port"
)

// Factory creates a ModelInvoker from a model config and resolved credentials.
type Factory func(ctx context.Context, cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) (port.ModelInvoker, error)

var providers = map[string]Factory{}

// Register registers an invoker factory by provider name.
func Register(name string, factory Factory) {
	providers[name] = factory
}

// New creates a ModelInvoker for a registered provider.
func New(ctx context.Context, name string, cfg *config.ModelConfig, sa *gcpauth.ServiceAccount) (port.ModelInvoker, error) {
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return factory(ctx, cfg, sa)
}

// Names returns the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

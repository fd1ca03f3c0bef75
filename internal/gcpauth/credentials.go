// Package gcpauth resolves the platform-delivered service account credential
// into a usable cloud identity and a self-refreshing token provider.
package gcpauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"

	"vertexadapters/internal/domain"
)

const (
	// DefaultIntegration is the environment slot holding the credential when
	// no integration name is configured.
	DefaultIntegration = "GCP_SERVICE_ACCOUNT"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// TokenProvider yields bearer tokens for outbound Vertex calls. The provider
// re-checks validity on every call and refreshes expired tokens.
type TokenProvider interface {
	Token(ctx context.Context) (*auth.Token, error)
}

// ServiceAccount is the decoded cloud identity: the inner service account
// document plus the project and region derived from it.
type ServiceAccount struct {
	ProjectID string
	Location  string

	raw []byte

	mu    sync.Mutex
	creds *auth.Credentials
}

// FromEnv reads the credential from the environment slot named by the
// integration (dashes are mapped to underscores, the platform convention for
// integration names). A missing or empty slot is a fatal configuration error.
func FromEnv(integration string) (*ServiceAccount, error) {
	if integration == "" {
		integration = DefaultIntegration
	}
	name := strings.ReplaceAll(integration, "-", "_")
	encoded := os.Getenv(name)
	if encoded == "" {
		return nil, fmt.Errorf("environment variable %s is empty: %w", name, domain.ErrMissingCredentials)
	}
	return Decode(encoded)
}

// Decode unwraps the double-encoded credential: base64 text containing a JSON
// object whose "content" field is itself the JSON-encoded service account
// document. Any layer failing to decode fails fast with a configuration error.
func Decode(encoded string) (*ServiceAccount, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, decodeError(err)
	}

	var wrapper struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(decoded, &wrapper); err != nil {
		return nil, decodeError(err)
	}
	if wrapper.Content == "" {
		return nil, decodeError(fmt.Errorf("wrapper object has no content field"))
	}

	var doc struct {
		ProjectID string `json:"project_id"`
		Location  string `json:"location"`
	}
	if err := json.Unmarshal([]byte(wrapper.Content), &doc); err != nil {
		return nil, decodeError(err)
	}

	return &ServiceAccount{
		ProjectID: doc.ProjectID,
		Location:  doc.Location,
		raw:       []byte(wrapper.Content),
	}, nil
}

func decodeError(err error) error {
	return fmt.Errorf("unable to decode the service account credential, "+
		"expected base64(JSON{\"content\": JSON(service account document)}): %w", err)
}

// RawJSON returns the inner service account document.
func (sa *ServiceAccount) RawJSON() []byte {
	return sa.raw
}

// Region returns the region recorded in the credential document, falling back
// to the provider default when the document carries none.
func (sa *ServiceAccount) Region(fallback string) string {
	if sa.Location != "" {
		return sa.Location
	}
	return fallback
}

// Credentials builds (once) the cloud credentials for the service account
// with the cloud-platform scope. The returned credentials cache their access
// token and refresh it when expired.
func (sa *ServiceAccount) Credentials() (*auth.Credentials, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	if sa.creds != nil {
		return sa.creds, nil
	}
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: sa.raw,
		Scopes:          []string{cloudPlatformScope},
	})
	if err != nil {
		return nil, fmt.Errorf("building credentials from service account: %w", err)
	}
	sa.creds = creds
	return creds, nil
}

// Token implements TokenProvider on top of the cached credentials.
func (sa *ServiceAccount) Token(ctx context.Context) (*auth.Token, error) {
	creds, err := sa.Credentials()
	if err != nil {
		return nil, err
	}
	return creds.Token(ctx)
}

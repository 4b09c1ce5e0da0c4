package dicomweb

import (
	"context"
	"sync"

	"github.com/hupe1980/dicomweb/session"
)

// CloudPlatformScope is the OAuth2 scope granting access to all Google Cloud
// APIs, including the Cloud Healthcare DICOMweb endpoints.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// DefaultScopes are requested when ambient credentials are discovered.
var DefaultScopes = []string{CloudPlatformScope}

// CloudCredentials is an opaque credential object understood by a
// CloudProvider (for Google Cloud: *google.Credentials or an
// oauth2.TokenSource).
type CloudCredentials any

// CloudProvider supplies cloud platform authorization. Implementations live
// in optional packages so programs that never talk to a cloud archive do not
// link the cloud SDK.
type CloudProvider interface {
	// Name identifies the provider in logs.
	Name() string
	// DefaultCredentials discovers ambient credentials (environment,
	// well-known files, metadata server) scoped to scopes.
	DefaultCredentials(ctx context.Context, scopes ...string) (CloudCredentials, error)
	// NewAuth wraps creds in an AuthStrategy without copying or refreshing them.
	NewAuth(creds CloudCredentials) (session.AuthStrategy, error)
}

var (
	providerMu sync.RWMutex
	provider   CloudProvider
)

// RegisterCloudProvider makes p the process-wide cloud provider. It is
// normally called from the init function of a provider package; a later
// registration replaces an earlier one and nil unregisters.
func RegisterCloudProvider(p CloudProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// RegisteredCloudProvider returns the process-wide cloud provider, or nil.
func RegisteredCloudProvider() CloudProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

func missingCloudProvider() error {
	return &DependencyMissingError{
		Capability: "Google Cloud Platform authorization",
		Hint:       `import _ "github.com/hupe1980/dicomweb/gcp" to enable interaction with the Cloud Healthcare API`,
	}
}

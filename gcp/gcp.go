// Package gcp adds Google Cloud Platform authorization to dicomweb sessions.
//
// Importing the package registers a cloud provider with the dicomweb package;
// without it dicomweb.NewSessionFromGCPCredentials reports a missing
// dependency. Typical use:
//
//	import _ "github.com/hupe1980/dicomweb/gcp"
//
//	sess, err := dicomweb.NewSessionFromGCPCredentials(ctx, nil) // ambient credentials
//
// Credentials may be a *google.Credentials or any oauth2.TokenSource.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hupe1980/dicomweb"
	"github.com/hupe1980/dicomweb/session"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrUnsupportedCredentials is returned by NewAuth for credential values it
// cannot turn into a token source.
var ErrUnsupportedCredentials = errors.New("gcp: unsupported credentials")

func init() {
	dicomweb.RegisterCloudProvider(Provider{})
}

// Provider implements dicomweb.CloudProvider on top of golang.org/x/oauth2/google.
type Provider struct{}

// Name implements dicomweb.CloudProvider.
func (Provider) Name() string { return "gcp" }

// DefaultCredentials looks up Application Default Credentials: the
// GOOGLE_APPLICATION_CREDENTIALS file, the gcloud well-known file, and
// finally the GCE metadata server. Nothing is cached between calls.
func (Provider) DefaultCredentials(ctx context.Context, scopes ...string) (dicomweb.CloudCredentials, error) {
	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// NewAuth implements dicomweb.CloudProvider.
func (Provider) NewAuth(creds dicomweb.CloudCredentials) (session.AuthStrategy, error) {
	auth, err := NewAuth(creds)
	if err != nil {
		return nil, err
	}
	return auth, nil
}

// Auth authorizes requests with OAuth2 bearer tokens issued for Google Cloud
// credentials. Tokens are cached and refreshed shortly before they expire.
type Auth struct {
	// Credentials is the credential object the Auth was built from, if any.
	Credentials *google.Credentials
	// Source is the caller supplied token source.
	Source oauth2.TokenSource

	ts oauth2.TokenSource
}

// NewAuth wraps creds without copying them. creds must be a
// *google.Credentials or an oauth2.TokenSource.
func NewAuth(creds any) (*Auth, error) {
	switch c := creds.(type) {
	case *google.Credentials:
		if c == nil || c.TokenSource == nil {
			return nil, fmt.Errorf("%w: credentials without token source", ErrUnsupportedCredentials)
		}
		return &Auth{Credentials: c, Source: c.TokenSource, ts: oauth2.ReuseTokenSource(nil, c.TokenSource)}, nil
	case oauth2.TokenSource:
		return &Auth{Source: c, ts: oauth2.ReuseTokenSource(nil, c)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCredentials, creds)
	}
}

// Authenticate implements session.AuthStrategy.
func (a *Auth) Authenticate(req *http.Request) error {
	tok, err := a.ts.Token()
	if err != nil {
		return fmt.Errorf("gcp: fetch token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}

// Kind names the strategy in logs.
func (a *Auth) Kind() string { return "gcp" }

// ProjectID returns the project associated with the credentials, if known.
func (a *Auth) ProjectID() string {
	if a.Credentials == nil {
		return ""
	}
	return a.Credentials.ProjectID
}

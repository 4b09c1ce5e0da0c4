// Package dicomweb builds HTTP sessions preconfigured for authentication
// against a DICOMweb archive. It covers the four credential scenarios a
// DICOMweb client meets in practice:
//  1. an arbitrary AuthStrategy (NewSessionFromAuth)
//  2. a basic-auth username and password (NewSessionFromUserPass)
//  3. a CA bundle and client certificate on top of any session (AddCertificates)
//  4. Google Cloud credentials, explicit or ambient (NewSessionFromGCPCredentials)
//
// The package issues no requests. The resulting *session.Session is handed to
// whatever code talks DICOMweb, usually via Session.Client.
//
// The package-level functions use a default Factory. Build a dedicated one
// with New to inject a logger, a cloud provider or an environment lookup.
package dicomweb

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/hupe1980/dicomweb/logging"
	"github.com/hupe1980/dicomweb/session"
)

// Options configures a Factory.
type Options struct {
	// Logger receives debug output about the configured sessions
	// (defaults to NoOp logger if nil).
	Logger logging.Logger

	// CloudProvider overrides the process-wide provider registered with
	// RegisterCloudProvider. Nil means use the registered one.
	CloudProvider CloudProvider

	// Scopes requested when ambient cloud credentials are discovered.
	Scopes []string

	// LookupEnv resolves $VAR references in certificate paths.
	LookupEnv func(key string) (string, bool)

	// UserHomeDir resolves a leading ~ in certificate paths. When unset it
	// reads HOME through LookupEnv, so ~ and $HOME always agree, and falls
	// back to os.UserHomeDir.
	UserHomeDir func() (string, error)
}

// Factory constructs sessions. It holds no per-session state and is safe for
// concurrent use.
type Factory struct {
	opts Options
}

// New creates a Factory with optional overrides. Any unset option is
// initialized with its process default.
func New(optFns ...func(o *Options)) *Factory {
	opts := Options{
		Logger:    logging.NoOpLogger{},
		Scopes:    DefaultScopes,
		LookupEnv: os.LookupEnv,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = DefaultScopes
	}
	opts.Scopes = slices.Clone(opts.Scopes)
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.UserHomeDir == nil {
		lookup := opts.LookupEnv
		opts.UserHomeDir = func() (string, error) {
			if home, ok := lookup("HOME"); ok && home != "" {
				return home, nil
			}
			return os.UserHomeDir()
		}
	}

	return &Factory{opts: opts}
}

func (f *Factory) newSession(auth session.AuthStrategy) *session.Session {
	s := session.New()
	s.Auth = auth
	logging.WithSession(f.opts.Logger, s.ID).Debug("initialize HTTP session", "auth", session.Kind(auth))
	return s
}

// NewSessionFromAuth creates a session authenticating with strategy. The
// strategy is stored, not interpreted; nil yields an unauthenticated session.
func (f *Factory) NewSessionFromAuth(strategy session.AuthStrategy) *session.Session {
	return f.newSession(strategy)
}

// NewSessionFromUserPass creates a session using HTTP basic authentication.
// The credentials are not checked until the first request.
func (f *Factory) NewSessionFromUserPass(username, password string) *session.Session {
	return f.newSession(session.BasicAuth{Username: username, Password: password})
}

// AddCertificates points sess at a CA bundle and a client certificate and
// returns it for chaining. An empty path leaves the corresponding field
// untouched. Paths may reference environment variables and start with ~.
//
// The CA bundle is resolved and assigned before the certificate is looked
// at; the first missing file aborts with a *FileNotFoundError.
func (f *Factory) AddCertificates(sess *session.Session, caBundle, cert string) (*session.Session, error) {
	if sess == nil {
		return nil, ErrNilSession
	}
	log := logging.WithSession(f.opts.Logger, sess.ID)

	if caBundle != "" {
		p, err := f.ResolveFile("CA bundle", caBundle)
		if err != nil {
			return nil, err
		}
		log.Debug("use CA bundle file", "path", p)
		sess.Verify = p
	}

	if cert != "" {
		p, err := f.ResolveFile("certificate", cert)
		if err != nil {
			return nil, err
		}
		log.Debug("use certificate file", "path", p)
		sess.Cert = p
	}

	return sess, nil
}

// ResolveFile expands raw the way AddCertificates does and checks that the
// result exists. kind describes the file in a *FileNotFoundError.
func (f *Factory) ResolveFile(kind, raw string) (string, error) {
	p, err := f.expandPath(raw)
	if err != nil {
		return "", fmt.Errorf("%s path %q: %w", kind, raw, err)
	}
	if _, err := os.Stat(p); err != nil {
		return "", &FileNotFoundError{Kind: kind, Path: p, Err: err}
	}
	return p, nil
}

// NewSessionFromGCPCredentials creates a session authorized with Google Cloud
// credentials. When creds is nil, ambient default credentials are discovered
// with the factory's scopes on every call.
//
// A *DependencyMissingError is returned when no cloud provider is available,
// which is distinct from credential discovery failures.
func (f *Factory) NewSessionFromGCPCredentials(ctx context.Context, creds CloudCredentials) (*session.Session, error) {
	p := f.opts.CloudProvider
	if p == nil {
		p = RegisteredCloudProvider()
	}
	if p == nil {
		return nil, missingCloudProvider()
	}

	if creds == nil {
		f.opts.Logger.Debug("discover default cloud credentials", "provider", p.Name(), "scopes", f.opts.Scopes)
		c, err := p.DefaultCredentials(ctx, f.opts.Scopes...)
		if err != nil {
			return nil, fmt.Errorf("discover default credentials: %w", err)
		}
		creds = c
	}

	auth, err := p.NewAuth(creds)
	if err != nil {
		return nil, fmt.Errorf("authorize %s session: %w", p.Name(), err)
	}

	s := session.New()
	s.Auth = auth
	logging.WithSession(f.opts.Logger, s.ID).Debug("initialize authorized cloud session", "provider", p.Name())
	return s, nil
}

var defaultFactory = New()

// NewSessionFromAuth creates a session using the default Factory.
func NewSessionFromAuth(strategy session.AuthStrategy) *session.Session {
	return defaultFactory.NewSessionFromAuth(strategy)
}

// NewSessionFromUserPass creates a basic-auth session using the default Factory.
func NewSessionFromUserPass(username, password string) *session.Session {
	return defaultFactory.NewSessionFromUserPass(username, password)
}

// AddCertificates augments sess using the default Factory.
func AddCertificates(sess *session.Session, caBundle, cert string) (*session.Session, error) {
	return defaultFactory.AddCertificates(sess, caBundle, cert)
}

// NewSessionFromGCPCredentials creates a cloud-authorized session using the
// default Factory and the registered cloud provider.
func NewSessionFromGCPCredentials(ctx context.Context, creds CloudCredentials) (*session.Session, error) {
	return defaultFactory.NewSessionFromGCPCredentials(ctx, creds)
}

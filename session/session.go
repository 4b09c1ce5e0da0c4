package session

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ErrTLSConfig is returned when the CA bundle or client certificate of a
// Session cannot be turned into a TLS configuration.
var ErrTLSConfig = errors.New("session: invalid tls configuration")

// Session carries the authentication and TLS settings for requests against
// one DICOMweb service. The zero value is usable: no authentication, system
// trust roots, no client certificate.
//
// Contract:
//   - Auth holds at most one strategy; assigning replaces the previous one
//   - Verify and Cert hold resolved paths; later assignments overwrite
//   - the Session is owned by the caller and never retained by constructors
type Session struct {
	// ID identifies the session in log output.
	ID string

	// Auth decorates every outgoing request. Nil means unauthenticated.
	Auth AuthStrategy

	// Verify is the path of a PEM CA bundle used to verify the server.
	// Empty means the system trust store.
	Verify string

	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool

	// Cert is the path of a PEM client certificate. The private key may be
	// stored in the same file or in CertKey.
	Cert string

	// CertKey is the optional path of the client certificate's private key.
	CertKey string

	// Header is applied to every outgoing request before Auth runs.
	Header http.Header
}

// New creates an unauthenticated session with a fresh ID.
func New() *Session {
	return &Session{ID: uuid.NewString(), Header: http.Header{}}
}

// TLSConfig builds the client TLS configuration described by the session.
func (s *Session) TLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: s.InsecureSkipVerify, //nolint:gosec // explicit opt-in
	}

	if s.Verify != "" {
		pem, err := os.ReadFile(s.Verify)
		if err != nil {
			return nil, fmt.Errorf("%w: read ca bundle: %w", ErrTLSConfig, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates in ca bundle %s", ErrTLSConfig, s.Verify)
		}
		cfg.RootCAs = pool
	}

	if s.Cert != "" {
		pair, err := s.loadKeyPair()
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	return cfg, nil
}

func (s *Session) loadKeyPair() (tls.Certificate, error) {
	if s.CertKey != "" {
		pair, err := tls.LoadX509KeyPair(s.Cert, s.CertKey)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("%w: load client certificate: %w", ErrTLSConfig, err)
		}
		return pair, nil
	}

	// Combined PEM: certificate and key blocks in one file.
	data, err := os.ReadFile(s.Cert)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: read client certificate: %w", ErrTLSConfig, err)
	}
	pair, err := tls.X509KeyPair(data, data)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: load client certificate %s: %w", ErrTLSConfig, s.Cert, err)
	}
	return pair, nil
}

// Transport wraps base so that every request carries the session's headers
// and authentication. A nil base uses http.DefaultTransport.
func (s *Session) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, header: s.Header.Clone(), auth: s.Auth}
}

// Client returns an *http.Client honoring the session's TLS and
// authentication settings.
func (s *Session) Client() (*http.Client, error) {
	tlsCfg, err := s.TLSConfig()
	if err != nil {
		return nil, err
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSClientConfig = tlsCfg
	return &http.Client{Transport: s.Transport(base)}, nil
}

// String implements fmt.Stringer without exposing credentials.
func (s *Session) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s auth=%s", s.ID, Kind(s.Auth))
	if s.Verify != "" {
		fmt.Fprintf(&b, " verify=%s", s.Verify)
	}
	if s.InsecureSkipVerify {
		b.WriteString(" insecure")
	}
	if s.Cert != "" {
		fmt.Fprintf(&b, " cert=%s", s.Cert)
	}
	return b.String()
}

type authTransport struct {
	base   http.RoundTripper
	header http.Header
	auth   AuthStrategy
}

// RoundTrip implements http.RoundTripper. The caller's request is never
// mutated; decoration happens on a clone.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vs := range t.header {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if t.auth != nil {
		if err := t.auth.Authenticate(r); err != nil {
			if req.Body != nil {
				_ = req.Body.Close()
			}
			return nil, fmt.Errorf("session: authenticate request: %w", err)
		}
	}
	return t.base.RoundTrip(r)
}

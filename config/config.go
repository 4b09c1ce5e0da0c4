// Package config loads session profiles from TOML files.
//
// A profile names the authentication method and certificate files for one
// DICOMweb service:
//
//	auth      = "basic"            # none | basic | gcp
//	username  = "alice"
//	password  = "secret"           # or DICOMWEB_PASSWORD
//	ca_bundle = "~/certs/ca.pem"
//	cert      = "$CERTDIR/client.pem"
//
//	[headers]
//	Accept = "application/dicom+json"
//
// Paths are expanded and checked by the factory when the profile is built.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hupe1980/dicomweb"
	"github.com/hupe1980/dicomweb/session"
)

const (
	EnvUsername = "DICOMWEB_USERNAME"
	EnvPassword = "DICOMWEB_PASSWORD"
	EnvCABundle = "DICOMWEB_CA_BUNDLE"
	EnvCert     = "DICOMWEB_CERT"
)

// AuthMethod selects the session constructor.
type AuthMethod string

const (
	AuthNone  AuthMethod = "none"
	AuthBasic AuthMethod = "basic"
	AuthGCP   AuthMethod = "gcp"
)

var ErrInvalidProfile = errors.New("config: invalid profile")

// Profile describes how to build one session.
type Profile struct {
	Auth               AuthMethod
	Username           string
	Password           string
	CABundle           string
	Cert               string
	CertKey            string
	InsecureSkipVerify bool
	Headers            map[string]string
}

type fileProfile struct {
	Auth               string            `toml:"auth"`
	Username           string            `toml:"username"`
	Password           string            `toml:"password"`
	CABundle           string            `toml:"ca_bundle"`
	Cert               string            `toml:"cert"`
	CertKey            string            `toml:"cert_key"`
	InsecureSkipVerify bool              `toml:"insecure_skip_verify"`
	Headers            map[string]string `toml:"headers"`
}

// DefaultProfile returns an unauthenticated profile.
func DefaultProfile() Profile {
	return Profile{Auth: AuthNone, Headers: map[string]string{}}
}

// Load reads a profile from path. Only keys present in the file override
// DefaultProfile; unknown keys and auth methods are rejected.
func Load(path string) (Profile, error) {
	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidProfile, undecoded[0].String(), path)
	}

	p := DefaultProfile()
	if meta.IsDefined("auth") {
		p.Auth = AuthMethod(strings.ToLower(strings.TrimSpace(raw.Auth)))
	}
	if meta.IsDefined("username") {
		p.Username = raw.Username
	}
	if meta.IsDefined("password") {
		p.Password = raw.Password
	}
	if meta.IsDefined("ca_bundle") {
		p.CABundle = strings.TrimSpace(raw.CABundle)
	}
	if meta.IsDefined("cert") {
		p.Cert = strings.TrimSpace(raw.Cert)
	}
	if meta.IsDefined("cert_key") {
		p.CertKey = strings.TrimSpace(raw.CertKey)
	}
	if meta.IsDefined("insecure_skip_verify") {
		p.InsecureSkipVerify = raw.InsecureSkipVerify
	}
	for k, v := range raw.Headers {
		p.Headers[k] = v
	}

	// Credentials may still arrive through ApplyEnv; Build runs Validate.
	switch p.Auth {
	case AuthNone, AuthBasic, AuthGCP:
	default:
		return Profile{}, fmt.Errorf("%w: unknown auth %q in %s", ErrInvalidProfile, p.Auth, path)
	}
	return p, nil
}

// ApplyEnv overrides credentials and certificate paths from the environment,
// so secrets need not live in the profile file.
func (p *Profile) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvUsername); ok {
		p.Username = v
	}
	if v, ok := lookup(EnvPassword); ok {
		p.Password = v
	}
	if v, ok := lookup(EnvCABundle); ok {
		p.CABundle = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvCert); ok {
		p.Cert = strings.TrimSpace(v)
	}
}

// Validate checks the profile for internally inconsistent settings.
func (p Profile) Validate() error {
	switch p.Auth {
	case AuthNone, AuthGCP:
		if p.Username != "" || p.Password != "" {
			return fmt.Errorf("%w: username/password set for auth %q", ErrInvalidProfile, p.Auth)
		}
	case AuthBasic:
		if strings.TrimSpace(p.Username) == "" {
			return fmt.Errorf("%w: basic auth requires username", ErrInvalidProfile)
		}
	default:
		return fmt.Errorf("%w: unknown auth %q", ErrInvalidProfile, p.Auth)
	}
	if p.CertKey != "" && p.Cert == "" {
		return fmt.Errorf("%w: cert_key requires cert", ErrInvalidProfile)
	}
	if p.InsecureSkipVerify && p.CABundle != "" {
		return fmt.Errorf("%w: insecure_skip_verify conflicts with ca_bundle", ErrInvalidProfile)
	}
	return nil
}

// Build creates the session described by the profile with f (the default
// factory when nil). Certificate paths are resolved by f.AddCertificates.
func (p Profile) Build(ctx context.Context, f *dicomweb.Factory) (*session.Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		f = dicomweb.New()
	}

	var (
		sess *session.Session
		err  error
	)
	switch p.Auth {
	case AuthBasic:
		sess = f.NewSessionFromUserPass(p.Username, p.Password)
	case AuthGCP:
		sess, err = f.NewSessionFromGCPCredentials(ctx, nil)
		if err != nil {
			return nil, err
		}
	default:
		sess = f.NewSessionFromAuth(nil)
	}

	for k, v := range p.Headers {
		sess.Header.Set(k, v)
	}
	sess.InsecureSkipVerify = p.InsecureSkipVerify

	if _, err := f.AddCertificates(sess, p.CABundle, p.Cert); err != nil {
		return nil, err
	}
	if p.CertKey != "" {
		key, err := f.ResolveFile("certificate key", p.CertKey)
		if err != nil {
			return nil, err
		}
		sess.CertKey = key
	}
	return sess, nil
}

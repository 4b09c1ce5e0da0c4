package session

import (
	"bytes"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/dicomweb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, a.Auth)
	assert.Empty(t, a.Verify)
	assert.Empty(t, a.Cert)
}

func TestBasicAuth_Authenticate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://pacs.example/studies", nil)
	require.NoError(t, BasicAuth{Username: "alice", Password: "s3cret"}.Authenticate(req))

	user, pass, ok := req.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "s3cret", pass)
}

func TestBasicAuth_LogValueRedacts(t *testing.T) {
	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("auth", "creds", BasicAuth{Username: "alice", Password: "s3cret"})

	assert.Contains(t, buf.String(), "alice")
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "none", Kind(nil))
	assert.Equal(t, "basic", Kind(BasicAuth{}))
	assert.Equal(t, "header", Kind(HeaderAuth{}))
	assert.Equal(t, "func", Kind(AuthFunc(func(*http.Request) error { return nil })))
	assert.Equal(t, "custom", Kind(customAuth{}))
	assert.Equal(t, "signed", Kind(kindedAuth{}))
}

type customAuth struct{}

func (customAuth) Authenticate(*http.Request) error { return nil }

type kindedAuth struct{ customAuth }

func (kindedAuth) Kind() string { return "signed" }

func TestTransport_AppliesHeaderAndAuth(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := New()
	s.Auth = HeaderAuth{Name: "Authorization", Value: "Bearer tok"}
	s.Header.Set("Accept", "application/dicom+json")

	client := &http.Client{Transport: s.Transport(nil)}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/studies", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, got)
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "application/dicom+json", got.Header.Get("Accept"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller request must not be mutated")
}

func TestTransport_AuthError(t *testing.T) {
	boom := errors.New("signer offline")
	s := New()
	s.Auth = AuthFunc(func(*http.Request) error { return boom })

	client := &http.Client{Transport: s.Transport(http.DefaultTransport)}
	_, err := client.Get("http://127.0.0.1:0/never")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestTLSConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	s := New()
	s.Verify = filepath.Join(dir, "missing.pem")
	_, err := s.TLSConfig()
	assert.ErrorIs(t, err, ErrTLSConfig)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not pem"), 0o600))

	s = New()
	s.Verify = garbage
	_, err = s.TLSConfig()
	assert.ErrorIs(t, err, ErrTLSConfig)

	s = New()
	s.Cert = garbage
	_, err = s.TLSConfig()
	assert.ErrorIs(t, err, ErrTLSConfig)
}

func TestClient_MutualTLS(t *testing.T) {
	dir := t.TempDir()
	ca := testutil.NewAuthority(t, dir, "test-ca")

	var gotUser string
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		_, _ = io.WriteString(w, "ok")
	}))
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{ca.ServerTLS(t)},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    ca.Pool(),
	}
	srv.StartTLS()
	defer srv.Close()

	t.Run("combined pem", func(t *testing.T) {
		s := New()
		s.Auth = BasicAuth{Username: "alice", Password: "pw"}
		s.Verify = ca.CAFile()
		s.Cert = ca.IssueCombinedClientCert(t, dir, "combined")

		client, err := s.Client()
		require.NoError(t, err)
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, "alice", gotUser)
	})

	t.Run("separate key", func(t *testing.T) {
		s := New()
		s.Verify = ca.CAFile()
		s.Cert, s.CertKey = ca.IssueClientCert(t, dir, "separate")

		client, err := s.Client()
		require.NoError(t, err)
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("no client cert rejected", func(t *testing.T) {
		s := New()
		s.Verify = ca.CAFile()

		client, err := s.Client()
		require.NoError(t, err)
		_, err = client.Get(srv.URL)
		assert.Error(t, err)
	})

	t.Run("untrusted server rejected", func(t *testing.T) {
		s := New()
		s.Cert = ca.IssueCombinedClientCert(t, dir, "untrusting")

		client, err := s.Client()
		require.NoError(t, err)
		_, err = client.Get(srv.URL)
		assert.Error(t, err)
	})
}

func TestString_NoSecrets(t *testing.T) {
	s := New()
	s.Auth = BasicAuth{Username: "alice", Password: "s3cret"}
	s.Verify = "/etc/ca.pem"

	out := s.String()
	assert.Contains(t, out, "auth=basic")
	assert.Contains(t, out, "verify=/etc/ca.pem")
	assert.NotContains(t, out, "s3cret")
}

package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Authority is a throwaway certificate authority writing PEM files into a
// test directory.
type Authority struct {
	cert   *x509.Certificate
	key    *rsa.PrivateKey
	caPath string
}

// NewAuthority creates a CA and writes its certificate to dir/ca.pem.
func NewAuthority(t testing.TB, dir string, commonName string) *Authority {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate ca key: %v", err)
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create ca cert: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse ca cert: %v", err)
	}

	caPath := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(caPath, encodePEM("CERTIFICATE", der), 0o644); err != nil {
		t.Fatalf("write ca cert: %v", err)
	}
	return &Authority{cert: cert, key: key, caPath: caPath}
}

// CAFile returns the path of the CA bundle.
func (a *Authority) CAFile() string { return a.caPath }

// Pool returns a cert pool trusting this authority.
func (a *Authority) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(a.cert)
	return pool
}

// ServerTLS issues a localhost server certificate and returns it as a
// ready-to-use tls.Certificate.
func (a *Authority) ServerTLS(t testing.TB) tls.Certificate {
	t.Helper()
	certPEM, keyPEM := a.issue(t, "localhost", x509.ExtKeyUsageServerAuth,
		[]string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1"), net.IPv6loopback})
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("load server pair: %v", err)
	}
	return pair
}

// IssueClientCert writes a client certificate and key as separate files.
func (a *Authority) IssueClientCert(t testing.TB, dir string, commonName string) (string, string) {
	t.Helper()
	certPEM, keyPEM := a.issue(t, commonName, x509.ExtKeyUsageClientAuth, nil, nil)
	base := sanitize(commonName)
	certPath := filepath.Join(dir, base+".crt")
	keyPath := filepath.Join(dir, base+".key")
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return certPath, keyPath
}

// IssueCombinedClientCert writes certificate and key into a single PEM file.
func (a *Authority) IssueCombinedClientCert(t testing.TB, dir string, commonName string) string {
	t.Helper()
	certPEM, keyPEM := a.issue(t, commonName, x509.ExtKeyUsageClientAuth, nil, nil)
	path := filepath.Join(dir, sanitize(commonName)+".pem")
	if err := os.WriteFile(path, append(certPEM, keyPEM...), 0o600); err != nil {
		t.Fatalf("write combined cert: %v", err)
	}
	return path
}

func (a *Authority) issue(
	t testing.TB,
	commonName string,
	usage x509.ExtKeyUsage,
	dnsNames []string,
	ips []net.IP,
) ([]byte, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
		DNSNames:     dnsNames,
		IPAddresses:  ips,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, a.cert, &key.PublicKey, a.key)
	if err != nil {
		t.Fatalf("create signed cert: %v", err)
	}
	return encodePEM("CERTIFICATE", der), encodePEM("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))
}

func encodePEM(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "cert"
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

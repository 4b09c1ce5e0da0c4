package session

import (
	"log/slog"
	"net/http"
)

// AuthStrategy produces per-request credentials. Implementations decorate the
// outgoing request (headers, signatures) and must be safe for concurrent use
// when the owning Session is shared between goroutines.
type AuthStrategy interface {
	Authenticate(req *http.Request) error
}

// BasicAuth authenticates with an HTTP basic-auth username/password pair.
// Credential correctness is only known once the server answers.
type BasicAuth struct {
	Username string
	Password string
}

// Authenticate implements AuthStrategy.
func (b BasicAuth) Authenticate(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// LogValue implements slog.LogValuer to redact the password.
func (b BasicAuth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", b.Username),
		slog.String("password", "********"),
	)
}

// AuthFunc adapts a function into an AuthStrategy.
type AuthFunc func(req *http.Request) error

// Authenticate implements AuthStrategy.
func (f AuthFunc) Authenticate(req *http.Request) error {
	return f(req)
}

// HeaderAuth sets a fixed header on every request, e.g. a static bearer token.
type HeaderAuth struct {
	Name  string
	Value string
}

// Authenticate implements AuthStrategy.
func (h HeaderAuth) Authenticate(req *http.Request) error {
	req.Header.Set(h.Name, h.Value)
	return nil
}

// LogValue implements slog.LogValuer to redact the header value.
func (h HeaderAuth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("header", h.Name),
		slog.String("value", "********"),
	)
}

// Kind names the strategy for logging without revealing credentials.
func Kind(a AuthStrategy) string {
	switch a.(type) {
	case nil:
		return "none"
	case BasicAuth, *BasicAuth:
		return "basic"
	case HeaderAuth, *HeaderAuth:
		return "header"
	case AuthFunc:
		return "func"
	}
	if k, ok := a.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return "custom"
}

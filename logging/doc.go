// Package logging provides a minimal logging interface and adapters for the
// dicomweb session helpers.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// the session factory uses to report what it configured. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelDebug, "text", false)
//	factory := dicomweb.New(func(o *dicomweb.Options) { o.Logger = logger })
//
// Secrets (passwords, tokens) are never passed to a Logger by this module.
package logging

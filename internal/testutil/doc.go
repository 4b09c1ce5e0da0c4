// Package testutil contains helpers used across tests to reduce boilerplate
// when generating TLS fixtures and asserting on log output. These helpers are
// intentionally minimal and avoid adding third‑party dependencies. They are
// not intended for production usage.
package testutil

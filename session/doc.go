// Package session holds the Session value handed to a DICOMweb client and the
// AuthStrategy capability attached to it.
//
// A Session only carries configuration: who to authenticate as, which CA
// bundle to trust and which client certificate to present. Construction and
// validation live in the root dicomweb package; this package turns a
// configured Session into an *http.Client (Client) or an http.RoundTripper
// (Transport) for the code that actually issues requests.
package session

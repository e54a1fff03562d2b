// Package http sends harpi requests.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts and redirect handling
//   - Optional TLS verification (--insecure)
//   - JSON and form encoded bodies built from request definitions
//   - Responses decoded into expression values for assertions
package http

// Package capture extracts values from HTTP responses for use in subsequent requests.
//
// Each variableAssignments entry of a request pairs a variableName with an
// expression evaluated against the decoded response body. The resulting
// values are saved to the session and substituted as $(variableName) in the
// requests that follow.
package capture

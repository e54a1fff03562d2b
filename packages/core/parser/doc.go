// Package parser loads harpi request files.
//
// A request file is a YAML document with three sections:
//   - variables: values substituted for $(name) before the file is decoded
//   - headers: default headers sent with every request
//   - requests: the ordered list of requests, each with its body, asserts,
//     variable assignments and optional wait before the next request
//
// Validate checks that every request can be sent. ValidateExpressions also
// parses every code assert and variable assignment expression.
package parser

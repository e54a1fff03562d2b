// Package assertions evaluates the asserts of a harpi request.
//
// Supported assert methods:
//   - statusCodeEquals: the response status equals the expected code
//   - codeAsserts (alias javascriptAsserts): named expressions evaluated
//     against the decoded response body
//   - jsonSchema: the body validates against a JSON schema file or inline mapping
//
// Unknown methods produce a failed result rather than an error.
package assertions

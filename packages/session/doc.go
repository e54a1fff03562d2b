// Package session persists the variables of a harpi run between invocations.
//
// Values generated for dynamic variables and values assigned from responses
// are stored next to the request file, so that running a single request later
// sees the same ids and tokens as the full run that produced them.
package session

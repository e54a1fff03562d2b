// Package runner executes harpi request files.
//
// A run templates the file with its variables, the session and any
// overrides, sends each request in order, evaluates its asserts and stores
// its variable assignments in the session before templating the file again
// for the next request. Progress is reported through a Reporter.
package runner

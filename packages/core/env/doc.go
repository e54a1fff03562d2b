// Package env resolves harpi variables.
//
// Values come from the variables block of a request file, from dynamic
// expressions generated once per session, and from overrides supplied at run
// time: an optional .env file, HARPI_VAR_* environment variables and the
// --variables flag, in increasing priority.
//
// References use the $(name) syntax and are substituted textually before the
// request file is parsed.
package env

// Package config handles configuration loading and management for harpi.
//
// A JSON config file (.harpi.config.json, harpi.config.json, .harpirc or
// .harpirc.json) found in the working directory supplies defaults for the
// run command: timeouts, TLS verification, default headers, variable
// overrides and output settings. Command line flags take precedence.
package config

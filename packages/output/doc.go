// Package output renders harpi runs.
//
// The console formatter prints every request and response while the run is
// in progress and a summary at the end. The JSON formatter accumulates
// results and writes a single document on Flush. LogBuffer captures the
// console output for the --output file.
package output

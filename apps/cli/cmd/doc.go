// Package cmd implements the harpi CLI commands using Cobra.
//
// Available commands:
//   - run: Run the requests of a harpi file, or a single request of it
//   - ls: List the requests of the harpi files below the current directory
//   - validate: Check request files and their expressions without sending requests
//   - eval: Evaluate one assert expression against a response
//   - init: Create a config file and an example request file
//   - version: Show harpi version information
package cmd

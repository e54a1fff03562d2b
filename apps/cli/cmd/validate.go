package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/harpi/packages/core/discovery"
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/core/runner"
	"github.com/abdul-hamid-achik/harpi/packages/output"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate harpi files without sending requests",
	Long: `Validate harpi files without sending any request. Every file must be
valid YAML, every request must have a method and every assert and variable
assignment expression must parse.

Examples:
  harpi validate api.harpi.yml
  harpi validate api
  harpi validate ./tests/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return withCode(ExitUsageError, fmt.Errorf("no %s files found", discovery.Extension))
	}

	warnings := output.NewConsoleFormatter(output.WithWriter(cmd.ErrOrStderr()))
	r := runner.NewRunner(nil, runner.WithWarnFunc(warnings.Warn))
	hasErrors := false
	for _, file := range files {
		if err := validateFile(r, file); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return withCode(ExitParseError, errors.New("validation failed"))
	}

	return nil
}

func validateFile(r *runner.Runner, path string) error {
	file, err := r.Load(path)
	if err != nil {
		return err
	}
	return parser.ValidateExpressions(file)
}

// collectFiles expands arguments into request files. An argument that does
// not exist is retried with the request file extension added.
func collectFiles(args []string) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		if _, err := os.Stat(arg); err != nil {
			if _, extErr := os.Stat(discovery.AddExtension(arg)); extErr == nil {
				arg = discovery.AddExtension(arg)
			}
		}
		expanded = append(expanded, arg)
	}
	return discovery.Collect(expanded)
}

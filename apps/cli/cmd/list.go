package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/harpi/packages/core/discovery"
	"github.com/abdul-hamid-achik/harpi/packages/core/runner"
	"github.com/abdul-hamid-achik/harpi/packages/output"
	"github.com/spf13/cobra"
)

var listVerboseFlag bool

var listCmd = &cobra.Command{
	Use:     "ls [file]",
	Aliases: []string{"list"},
	Short:   "List the requests of harpi files",
	Long: `List the requests of every .harpi.yml file in the current directory and
its subdirectories. With an argument only the files whose path contains it
are listed. Only the values written in the variables block are substituted.

Examples:
  harpi ls
  harpi ls users
  harpi ls users -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: listCommand,
}

func init() {
	listCmd.Flags().BoolVarP(&listVerboseFlag, "verbose", "v", false, "Print full request bodies")
}

func listCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	files, err := discovery.FindAll(cwd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		files = discovery.Filter(files, args[0])
	}

	console := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(listVerboseFlag),
	)
	r := runner.NewRunner(nil)

	for _, file := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "\n\n %s\n", filepath.Base(file))
		f, err := r.Load(file)
		if err != nil {
			console.FormatError(err)
			continue
		}
		for i, req := range f.Requests {
			console.RequestStarted(i+1, req)
		}
	}

	return nil
}

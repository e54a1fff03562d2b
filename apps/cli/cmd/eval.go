package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/harpi/packages/expr"
	"github.com/spf13/cobra"
)

var (
	evalResponseFlag string
	evalASTFlag      bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <code>",
	Short: "Evaluate an assert expression",
	Long: `Evaluate one expression the way codeAsserts and variableAssignments do.
The response is given as JSON text, or as @path to read it from a file, and
is null otherwise.

Examples:
  harpi eval "1 + 2 * 3"
  harpi eval "response.items.filter(i => i.active).length" --response @body.json
  harpi eval "response.id == 7" --response '{"id": 7}'
  harpi eval "a.b[0] && c" --ast`,
	Args: cobra.ExactArgs(1),
	RunE: evalCommand,
}

func init() {
	evalCmd.Flags().StringVarP(&evalResponseFlag, "response", "r", "", "Response body as JSON text or @file")
	evalCmd.Flags().BoolVar(&evalASTFlag, "ast", false, "Print the parsed tree instead of evaluating")
}

func evalCommand(cmd *cobra.Command, args []string) error {
	code := args[0]

	if evalASTFlag {
		node, err := expr.Parse(code)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), node.String())
		return nil
	}

	response, err := loadResponse(evalResponseFlag)
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	result, err := expr.Eval(code, response)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatResult(result))
	return nil
}

func loadResponse(arg string) (expr.Value, error) {
	if arg == "" {
		return expr.Null(), nil
	}

	data := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return expr.Null(), fmt.Errorf("cannot read response: %w", err)
		}
		data = content
	}

	if v, ok := expr.FromJSON(data); ok {
		return v, nil
	}
	return expr.String(string(data)), nil
}

// formatResult prints the value as JSON where it has a JSON form.
func formatResult(v expr.Value) string {
	data, err := json.Marshal(v.Native())
	if err != nil {
		return v.String()
	}
	return string(data)
}

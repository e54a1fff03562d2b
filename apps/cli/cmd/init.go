package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/harpi/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new harpi project",
	Long: `Initialize a new harpi project in the current directory.

This creates:
  - .harpi.config.json   - Configuration file
  - example.harpi.yml    - Example request file

Examples:
  harpi init
  harpi init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleRequestFile = `variables:
  baseUrl: http://localhost:3000
  runId: $(guid)

headers:
  Content-Type: application/json

requests:
  - name: health check
    url: $(baseUrl)/health
    method: get
    asserts:
      statusCodeEquals: 200

  - name: create resource
    url: $(baseUrl)/resources
    method: post
    jsonBody:
      name: resource $(runId)
    asserts:
      statusCodeEquals: 201
      codeAsserts:
        - name: has id
          code: response.id != null
    variableAssignments:
      - variableName: resourceId
        code: response.id
    waitBeforeNextRequest:
      name: let the resource settle
      milliseconds: 200

  - name: read resource
    url: $(baseUrl)/resources/$(resourceId)
    method: get
    asserts:
      statusCodeEquals: 200
      codeAsserts:
        - name: same name
          code: response.name == "resource $(runId)"
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, "example.harpi.yml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.FollowRedirects = config.BoolPtr(true)
	cfg.ValidateSSL = config.BoolPtr(true)
	cfg.Headers = map[string]string{"User-Agent": "harpi/" + version}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleRequestFile), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nharpi project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'harpi run example' to execute the example requests.\n")

	return nil
}

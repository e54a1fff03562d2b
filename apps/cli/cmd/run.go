package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/core/config"
	"github.com/abdul-hamid-achik/harpi/packages/core/discovery"
	"github.com/abdul-hamid-achik/harpi/packages/core/env"
	"github.com/abdul-hamid-achik/harpi/packages/core/runner"
	"github.com/abdul-hamid-achik/harpi/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file> [requestId]",
	Short: "Run the requests of a harpi file",
	Long: `Run the requests of a .harpi.yml file in order. The file is looked up in
the current directory and the extension may be left out.

When a request id is given only that request runs, using the variables of
the session saved by the previous run. Id 1 starts a new session.

Examples:
  harpi run api
  harpi run api.harpi.yml 3
  harpi run api --variables "token=abc,user=admin"
  harpi run api -v -o run.log --bail`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	verboseFlag   bool
	variablesFlag string
	outputFlag    string
	bailFlag      bool
	insecureFlag  bool
	timeoutFlag   string
	noColorFlag   bool
	formatFlag    string
	configFlag    string
	envFileFlag   string
	proxyFlag     string
	watchFlag     bool
)

func init() {
	runCmd.Flags().StringVar(&variablesFlag, "variables", "", "Variables for this run, as \"key=value,key2=value2\"")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HARPI_ENV_FILE", ""), "Path to .env file with variables (env: HARPI_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HARPI_CONFIG", ""), "Path to config file (env: HARPI_CONFIG)")

	// Output flags
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HARPI_VERBOSE", false), "Print full request and response bodies (env: HARPI_VERBOSE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HARPI_NO_COLOR", false), "Disable colored output (env: HARPI_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HARPI_OUTPUT", ""), "Also write the output to this file (env: HARPI_OUTPUT)")
	runCmd.Flags().StringVar(&formatFlag, "format", getEnvString("HARPI_FORMAT", ""), "Output format: console, json (env: HARPI_FORMAT)")

	// Execution flags
	runCmd.Flags().BoolVarP(&bailFlag, "bail", "b", getEnvBool("HARPI_BAIL", false), "Stop at the first failed assert (env: HARPI_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HARPI_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HARPI_TIMEOUT)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the file for changes and run it again")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HARPI_PROXY", ""), "Proxy URL for HTTP requests (env: HARPI_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HARPI_INSECURE", false), "Accept self signed certificates (env: HARPI_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// runOptions is the resolved configuration of a run: flags over config file
// over defaults.
type runOptions struct {
	runner  runner.Config
	format  string
	output  string
	verbose bool
	noColor bool
}

func runCommand(cmd *cobra.Command, args []string) error {
	requestID := 0
	if len(args) > 1 {
		id, err := strconv.Atoi(args[1])
		if err != nil || id < 1 {
			return withCode(ExitUsageError, fmt.Errorf("invalid request id %q", args[1]))
		}
		requestID = id
	}

	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withCode(ExitConfigError, err)
	}

	opts, err := resolveRunOptions(fileConfig)
	if err != nil {
		return withCode(ExitConfigError, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := executeRun(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0], requestID)

	if !watchFlag {
		if err != nil {
			return err
		}
		if failed {
			return reported(errAssertsFailed)
		}
		return nil
	}

	return watch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0], requestID)
}

// flagConfig returns the run flags as a config layer. Unset flags stay zero so
// they do not override the config file.
func flagConfig() (*config.Config, error) {
	cfg := &config.Config{
		Format:  formatFlag,
		Output:  outputFlag,
		Proxy:   proxyFlag,
		EnvFile: envFileFlag,
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		cfg.Timeout = int(d.Milliseconds())
	}
	if verboseFlag {
		cfg.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		cfg.NoColor = config.BoolPtr(true)
	}
	if bailFlag {
		cfg.Bail = config.BoolPtr(true)
	}
	if insecureFlag {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	return cfg, nil
}

func resolveRunOptions(fileConfig *config.Config) (*runOptions, error) {
	flags, err := flagConfig()
	if err != nil {
		return nil, err
	}
	cfg := fileConfig.Merge(flags)

	opts := &runOptions{
		format:  strings.ToLower(cfg.Format),
		output:  cfg.Output,
		verbose: cfg.GetVerbose(),
		noColor: cfg.GetNoColor(),
	}
	switch opts.format {
	case "", "console", "json":
	default:
		return nil, fmt.Errorf("unknown format %q (use console or json)", opts.format)
	}

	var fromEnvFile map[string]string
	if cfg.EnvFile != "" {
		vars, err := env.LoadDotEnv(cfg.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read env file: %w", err)
		}
		fromEnvFile = vars
	}

	opts.runner = runner.Config{
		Verbose:        opts.verbose,
		Timeout:        time.Duration(cfg.Timeout) * time.Millisecond,
		FollowRedirect: cfg.GetFollowRedirects(),
		MaxRedirects:   cfg.MaxRedirects,
		ValidateSSL:    cfg.GetValidateSSL(),
		Proxy:          cfg.Proxy,
		Bail:           cfg.GetBail(),
		DefaultHeaders: cfg.Headers,
		Variables: env.MergeVariables(
			cfg.Variables,
			fromEnvFile,
			env.LoadSystemEnv(env.SystemEnvPrefix),
			env.ParseCLIVariables(variablesFlag),
		),
	}
	return opts, nil
}

// executeRun runs one request file and reports it through the configured
// formatter. failed is set when an assert failed or the file was not found.
// Returned errors have already been printed.
func executeRun(ctx context.Context, out, errOut io.Writer, opts *runOptions, name string, requestID int) (bool, error) {
	var logBuf *output.LogBuffer
	if opts.output != "" {
		logBuf = output.NewLogBuffer()
		out = io.MultiWriter(out, logBuf)
	}
	defer func() {
		if logBuf == nil {
			return
		}
		if err := logBuf.Save(opts.output); err != nil {
			fmt.Fprintf(errOut, "warning: failed to write %s: %v\n", opts.output, err)
		}
	}()

	console := output.NewConsoleFormatter(
		output.WithWriter(out),
		output.WithVerbose(opts.verbose),
		output.WithNoColor(opts.noColor),
	)

	var formatter Formatter = console
	runnerOpts := []runner.Option{runner.WithWarnFunc(console.Warn)}
	if opts.format == "json" {
		formatter = output.NewJSONFormatter(output.JSONWithWriter(out))
		stderr := output.NewConsoleFormatter(output.WithWriter(errOut), output.WithNoColor(opts.noColor))
		runnerOpts = []runner.Option{runner.WithWarnFunc(stderr.Warn)}
	} else {
		runnerOpts = append(runnerOpts, runner.WithReporter(console))
	}

	flush := func(d time.Duration) {
		if flushable, ok := formatter.(Flushable); ok {
			if err := flushable.Flush(d); err != nil {
				fmt.Fprintf(errOut, "error writing output: %v\n", err)
			}
		}
	}

	if opts.verbose {
		formatter.FormatHeader(version)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return false, err
	}
	path, err := discovery.Find(cwd, name)
	if err != nil {
		if errors.Is(err, discovery.ErrNotFound) {
			if opts.format == "json" {
				formatter.FormatError(fmt.Errorf("%s: %w", name, err))
				flush(0)
			} else {
				console.Message("No file found")
			}
			return true, nil
		}
		formatter.FormatError(err)
		flush(0)
		return false, reported(err)
	}

	r := runner.NewRunner(&opts.runner, runnerOpts...)
	result, err := r.RunFile(ctx, path, requestID)
	if err != nil {
		formatter.FormatError(err)
		if result != nil {
			formatter.FormatResult(result)
			flush(result.Duration)
		} else {
			flush(0)
		}
		return false, reported(err)
	}

	formatter.FormatResult(result)
	flush(result.Duration)
	return result.Failed > 0, nil
}

// watch runs the file again whenever a request file in its directory is
// written, until ctx is done.
func watch(ctx context.Context, out, errOut io.Writer, opts *runOptions, name string, requestID int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	if path, err := discovery.Find(dir, name); err == nil {
		dir = filepath.Dir(path)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer
	rerun := make(chan string, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !discovery.IsRequestFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			changed := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- changed:
				default:
				}
			})

		case changed := <-rerun:
			fmt.Fprintf(out, "\n\nFile changed: %s\nRunning again...\n", changed)
			_, _ = executeRun(ctx, out, errOut, opts, name, requestID)
			fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errOut, "watcher error: %v\n", err)
		}
	}
}

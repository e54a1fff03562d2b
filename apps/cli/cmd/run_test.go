package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/core/config"
	"github.com/abdul-hamid-achik/harpi/packages/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRunFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		verboseFlag, bailFlag, insecureFlag, noColorFlag, watchFlag = false, false, false, false, false
		variablesFlag, outputFlag, timeoutFlag, formatFlag, configFlag, envFileFlag, proxyFlag = "", "", "", "", "", "", ""
	})
}

func TestResolveRunOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		resetRunFlags(t)
		opts, err := resolveRunOptions(config.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, opts.runner.Timeout)
		assert.True(t, opts.runner.FollowRedirect)
		assert.True(t, opts.runner.ValidateSSL)
		assert.False(t, opts.runner.Bail)
		assert.Equal(t, "console", opts.format)
	})

	t.Run("flags override config", func(t *testing.T) {
		resetRunFlags(t)
		cfg := config.DefaultConfig()
		cfg.Variables = map[string]string{"a": "config", "b": "config"}
		cfg.Proxy = "http://config-proxy"
		cfg.Format = "json"

		variablesFlag = "b=flag,c=x=y"
		timeoutFlag = "5s"
		insecureFlag = true
		formatFlag = "console"
		bailFlag = true

		opts, err := resolveRunOptions(cfg)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, opts.runner.Timeout)
		assert.False(t, opts.runner.ValidateSSL)
		assert.True(t, opts.runner.Bail)
		assert.Equal(t, "console", opts.format)
		assert.Equal(t, "http://config-proxy", opts.runner.Proxy)
		assert.Equal(t, "config", opts.runner.Variables["a"])
		assert.Equal(t, "flag", opts.runner.Variables["b"])
		assert.Equal(t, "x=y", opts.runner.Variables["c"])
	})

	t.Run("unset flags keep config values", func(t *testing.T) {
		resetRunFlags(t)
		cfg := config.DefaultConfig()
		cfg.Timeout = 1500
		cfg.Verbose = config.BoolPtr(true)
		cfg.ValidateSSL = config.BoolPtr(false)
		cfg.FollowRedirects = config.BoolPtr(false)
		cfg.Output = "run.log"

		opts, err := resolveRunOptions(cfg)
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, opts.runner.Timeout)
		assert.True(t, opts.verbose)
		assert.True(t, opts.runner.Verbose)
		assert.False(t, opts.runner.ValidateSSL)
		assert.False(t, opts.runner.FollowRedirect)
		assert.Equal(t, "run.log", opts.output)
	})

	t.Run("env file and system env", func(t *testing.T) {
		resetRunFlags(t)
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("token=fromfile\nuser=fromfile\n"), 0644))
		t.Setenv("HARPI_VAR_user", "fromenv")

		envFileFlag = path
		opts, err := resolveRunOptions(config.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, "fromfile", opts.runner.Variables["token"])
		assert.Equal(t, "fromenv", opts.runner.Variables["user"])
	})

	t.Run("invalid values", func(t *testing.T) {
		resetRunFlags(t)
		timeoutFlag = "soon"
		_, err := resolveRunOptions(config.DefaultConfig())
		assert.Error(t, err)

		timeoutFlag = ""
		formatFlag = "xml"
		_, err = resolveRunOptions(config.DefaultConfig())
		assert.Error(t, err)

		formatFlag = ""
		envFileFlag = filepath.Join(t.TempDir(), "missing.env")
		_, err = resolveRunOptions(config.DefaultConfig())
		assert.Error(t, err)
	})
}

func setupRunDir(t *testing.T, status int) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id": 7}`))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	content := `
requests:
  - name: read
    url: ` + server.URL + `/items
    method: get
    asserts:
      statusCodeEquals: 200
    variableAssignments:
      - variableName: itemId
        code: response.id
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.harpi.yml"), []byte(content), 0644))
	chdirForTest(t, dir)
	return dir
}

func testRunOptions(format, out string) *runOptions {
	opts := &runOptions{format: format, output: out, noColor: true}
	opts.runner.FollowRedirect = true
	opts.runner.ValidateSSL = true
	return opts
}

func TestExecuteRun_Console(t *testing.T) {
	setupRunDir(t, http.StatusOK)

	var out, errOut bytes.Buffer
	failed, err := executeRun(context.Background(), &out, &errOut, testRunOptions("console", ""), "api", 0)
	require.NoError(t, err)
	assert.False(t, failed)

	printed := out.String()
	assert.Contains(t, printed, "started new run for api.harpi.yml")
	assert.Contains(t, printed, "- request \n  - id: 1\n  - name: 'read'")
	assert.Contains(t, printed, "  - statusCode: 200\n")
	assert.Contains(t, printed, "    - statusCodeEquals: status code was 200\n")
	assert.Contains(t, printed, "  - itemId: 7\n")
	assert.Contains(t, printed, "saving new session at:")
	assert.Contains(t, printed, "Requests: 1 passed, 1 total")
}

func TestExecuteRun_FailedAssert(t *testing.T) {
	setupRunDir(t, http.StatusInternalServerError)

	var out, errOut bytes.Buffer
	failed, err := executeRun(context.Background(), &out, &errOut, testRunOptions("console", ""), "api.harpi.yml", 0)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Contains(t, out.String(), "exp: 200 act: 500")
}

func TestExecuteRun_JSON(t *testing.T) {
	setupRunDir(t, http.StatusOK)

	var out, errOut bytes.Buffer
	failed, err := executeRun(context.Background(), &out, &errOut, testRunOptions("json", ""), "api", 0)
	require.NoError(t, err)
	assert.False(t, failed)

	var doc output.JSONOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, 1, doc.Summary.Passed)
	require.Len(t, doc.Requests, 1)
	assert.Equal(t, "read", doc.Requests[0].Name)
}

func TestExecuteRun_LogFile(t *testing.T) {
	dir := setupRunDir(t, http.StatusOK)

	var out, errOut bytes.Buffer
	_, err := executeRun(context.Background(), &out, &errOut, testRunOptions("console", "run"), "api", 0)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run"))
	require.NoError(t, err)
	assert.Equal(t, out.String(), string(data))
}

func TestExecuteRun_NotFound(t *testing.T) {
	chdirForTest(t, t.TempDir())

	var out, errOut bytes.Buffer
	failed, err := executeRun(context.Background(), &out, &errOut, testRunOptions("console", ""), "nope", 0)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Equal(t, "No file found\n", out.String())
}

func TestExecuteRun_RequiredVariable(t *testing.T) {
	dir := t.TempDir()
	content := "variables:\n  token: required\nrequests:\n  - url: http://localhost\n    method: get\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.harpi.yml"), []byte(content), 0644))
	chdirForTest(t, dir)

	var out, errOut bytes.Buffer
	_, err := executeRun(context.Background(), &out, &errOut, testRunOptions("console", ""), "api", 0)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
	assert.Contains(t, out.String(), "Required variable 'token' not found in cli parameters")
}

// chdirForTest changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

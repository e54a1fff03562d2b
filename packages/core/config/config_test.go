package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAndLoadConfig_Defaults(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 30000, cfg.Timeout)
	assert.True(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetFollowRedirects())
	assert.False(t, cfg.GetBail())
}

func TestFindAndLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".harpirc"), []byte(`{"timeout": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harpi.config.json"), []byte(`{"timeout": 2}`), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Timeout)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	content := `{
		"timeout": 5000,
		"validateSSL": false,
		"bail": true,
		"headers": {"X-Api-Key": "abc"},
		"variables": {"baseUrl": "http://localhost"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetBail())
	assert.Equal(t, "abc", cfg.Headers["X-Api-Key"])
	assert.Equal(t, "http://localhost", cfg.Variables["baseUrl"])
	assert.Equal(t, "console", cfg.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".harpirc")
	require.NoError(t, os.WriteFile(path, []byte(`{nope`), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestMerge(t *testing.T) {
	base := &Config{
		Timeout:   1000,
		Bail:      BoolPtr(true),
		Headers:   map[string]string{"A": "1", "B": "1"},
		Variables: map[string]string{"x": "1"},
	}
	other := &Config{
		Timeout:     2000,
		ValidateSSL: BoolPtr(false),
		Headers:     map[string]string{"B": "2"},
		Format:      "json",
	}

	merged := base.Merge(other)
	assert.Equal(t, 2000, merged.Timeout)
	assert.True(t, merged.GetBail())
	assert.False(t, merged.GetValidateSSL())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.Equal(t, map[string]string{"x": "1"}, merged.Variables)
	assert.Equal(t, "json", merged.Format)

	assert.Equal(t, map[string]string{"A": "1", "B": "1"}, base.Headers)
	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".harpi.config.json")
	cfg := &Config{Timeout: 100, NoColor: BoolPtr(true)}
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100, loaded.Timeout)
	assert.True(t, loaded.GetNoColor())
}

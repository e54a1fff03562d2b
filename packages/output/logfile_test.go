package output

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{"run.log", "run.log"},
		{"/tmp/out/run.txt", "/tmp/out/run.txt"},
		{"run", filepath.Join(cwd, "run")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LogFilePath(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogBuffer(t *testing.T) {
	buf := NewLogBuffer()
	fmt.Fprintf(buf, "- statusCode: \x1b[32m200\x1b[0m\n")
	fmt.Fprintf(buf, "\x1b[1;31mfailed\x1b[0m\n")

	assert.Equal(t, "- statusCode: 200\nfailed\n", buf.String())

	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, buf.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "- statusCode: 200\nfailed\n", string(data))

	buf.Reset()
	assert.Empty(t, buf.String())
}

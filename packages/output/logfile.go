package output

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// LogBuffer collects everything printed during a run so it can be saved to
// the --output file once the run ends.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

func (l *LogBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// String returns the collected output without color sequences.
func (l *LogBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ansiPattern.ReplaceAllString(l.buf.String(), "")
}

// Reset drops the collected output.
func (l *LogBuffer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
}

// Save writes the collected output to the file named by name.
func (l *LogBuffer) Save(name string) error {
	path, err := LogFilePath(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(l.String()), 0644)
}

// LogFilePath resolves the --output argument. A name without an extension is
// placed in the current directory.
func LogFilePath(name string) (string, error) {
	if filepath.Ext(name) != "" {
		return name, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the directory, next to the request file, holding session files.
	Dir = "harpiconfig"
	// FilePrefix is prepended to the request file name to name its session file.
	FilePrefix = "session."
	// GitIgnoreFile keeps session files out of version control.
	GitIgnoreFile = "harpi.gitignore"
)

// Store reads and writes session files. Loaded sessions are cached per path.
type Store struct {
	logFunc func(format string, args ...any)
	cache   map[string]map[string]any
}

func NewStore() *Store {
	return &Store{cache: make(map[string]map[string]any)}
}

// SetLogFunc sets a function called when a new session is saved.
func (s *Store) SetLogFunc(fn func(format string, args ...any)) {
	s.logFunc = fn
}

// Path returns the session file path for a request file.
func Path(requestFile string) string {
	return filepath.Join(filepath.Dir(requestFile), Dir, FilePrefix+filepath.Base(requestFile))
}

// Load returns the stored session for a request file. The boolean is false
// when no session has been saved yet.
func (s *Store) Load(requestFile string) (map[string]any, bool, error) {
	path := Path(requestFile)
	if cached, ok := s.cache[path]; ok {
		return copyMap(cached), true, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read session: %w", err)
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, false, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if values == nil {
		values = make(map[string]any)
	}

	s.cache[path] = values
	return copyMap(values), true, nil
}

// Save replaces the session of a request file with values.
func (s *Store) Save(requestFile string, values map[string]any) error {
	dir := filepath.Dir(requestFile)
	if err := ensureStructure(dir); err != nil {
		return err
	}

	path := Path(requestFile)
	if s.logFunc != nil {
		s.logFunc("saving new session at: %s", path)
	}

	var data []byte
	if len(values) > 0 {
		var err error
		data, err = yaml.Marshal(values)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	s.cache[path] = copyMap(values)
	return nil
}

// Merge adds values to the stored session of a request file and returns the
// merged session. A nil value is stored as an empty string.
func (s *Store) Merge(requestFile string, values map[string]any) (map[string]any, error) {
	current, _, err := s.Load(requestFile)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = make(map[string]any)
	}

	for k, v := range values {
		if v == nil {
			v = ""
		}
		current[k] = v
	}

	if err := s.Save(requestFile, current); err != nil {
		return nil, err
	}
	return current, nil
}

func ensureStructure(dir string) error {
	ignorePath := filepath.Join(dir, GitIgnoreFile)
	if _, err := os.Stat(ignorePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(ignorePath, []byte(Dir+"/"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", GitIgnoreFile, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, Dir), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return nil
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

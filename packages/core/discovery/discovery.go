// Package discovery locates harpi request files.
package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the suffix of every request file.
const Extension = ".harpi.yml"

var ErrNotFound = errors.New("no file found")

// AddExtension appends Extension to name unless it is already there.
func AddExtension(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// IsRequestFile reports whether path names a request file.
func IsRequestFile(path string) bool {
	return strings.HasSuffix(path, Extension)
}

// Find resolves a request file name. A bare name is looked up in dir only,
// subdirectories are not searched; a name with a directory part is used as a
// path.
func Find(dir, name string) (string, error) {
	name = AddExtension(name)

	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		path := filepath.FromSlash(name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		return "", ErrNotFound
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() && entry.Name() == name {
			return filepath.Join(dir, name), nil
		}
	}
	return "", ErrNotFound
}

// FindAll walks dir recursively and returns every request file, sorted.
func FindAll(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsRequestFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Filter keeps the paths containing pattern. An empty pattern keeps all.
func Filter(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}
	var out []string
	for _, p := range paths {
		if strings.Contains(p, pattern) {
			out = append(out, p)
		}
	}
	return out
}

// Collect expands command line arguments: directories are walked for request
// files, files are taken as they are.
func Collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := FindAll(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

package api

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrLoadDisabled is returned when no data directory is configured.
	ErrLoadDisabled = errors.New("loading files over the API is disabled")

	// ErrOutsideDataDir is returned for paths that leave the data directory.
	ErrOutsideDataDir = errors.New("path is outside the data directory")
)

// resolveDataPath maps a requested path to a file under dir. Relative paths
// are taken relative to dir; symlinks are followed before the check.
func resolveDataPath(dir, requested string) (string, error) {
	if dir == "" {
		return "", ErrLoadDisabled
	}
	root, err := realPath(dir)
	if err != nil {
		return "", err
	}

	path := requested
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path, err = realPath(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideDataDir
	}
	return path, nil
}

// realPath is the absolute, symlink-free form of p. A missing final file is
// allowed so the load itself reports it.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return abs, nil
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

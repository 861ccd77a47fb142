package utils

import (
	"path/filepath"
	"strings"
)

// GetPathInfo returns the absolute, cleaned form of relPath and the
// directory that contains it.
func GetPathInfo(relPath string) (fullPath, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// WithExt swaps the extension of path for ext (which includes the dot).
// A path without an extension gets ext appended.
func WithExt(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}

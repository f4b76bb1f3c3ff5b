package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePathFromScript resolves a path from a script file.
// If the provided path is already absolute, it's returned as is.
// If it's relative, it's joined with scriptDir.
func ResolvePathFromScript(scriptDir, pathFromScript string) string {
	if filepath.IsAbs(pathFromScript) || scriptDir == "" {
		return filepath.Clean(pathFromScript)
	}
	return filepath.Join(scriptDir, pathFromScript)
}

// ExistingFile resolves path against scriptDir and checks it names a regular file.
func ExistingFile(scriptDir, path string) (string, error) {
	resolved := ResolvePathFromScript(scriptDir, path)
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("file not found at %q: %w", resolved, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%q is a directory", resolved)
	}
	return resolved, nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	return nil
}

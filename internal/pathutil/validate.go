// Package pathutil confines files written on behalf of remote callers to
// known directories.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportsDir is the subdirectory of the data directory that MCP exports land in.
const ExportsDir = "exports"

// RedactPath shortens a path to .../<parent>/<basename> for error messages
// that may reach a remote caller.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ValidatePath reports whether path, after cleaning and symlink resolution
// of its existing ancestors, lies inside one of allowedDirs. The file itself
// need not exist.
func ValidatePath(path string, allowedDirs []string) error {
	switch {
	case path == "":
		return fmt.Errorf("path validation failed: path is empty")
	case len(allowedDirs) == 0:
		return fmt.Errorf("path validation failed: no allowed directories configured")
	case strings.ContainsRune(path, '\x00'):
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve absolute path: %w", err)
	}
	// A symlinked directory inside an allowed tree may point outside it.
	resolvedDir, err := resolveExistingParent(filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve parent directory: %w", err)
	}
	resolved := filepath.Join(resolvedDir, filepath.Base(absPath))

	for _, allowed := range allowedDirs {
		allowedAbs, err := filepath.Abs(filepath.Clean(allowed))
		if err != nil {
			continue
		}
		allowedResolved, err := resolveExistingParent(allowedAbs)
		if err != nil {
			continue
		}
		if isSubpath(resolved, allowedResolved) {
			return nil
		}
	}
	return fmt.Errorf("path validation failed: %q is outside allowed directories", RedactPath(absPath))
}

// ExportPath joins name onto the exports directory under dataDir and checks
// that the result stays there. name is a bare file name or a relative path.
func ExportPath(dataDir, name string) (string, error) {
	if dataDir == "" {
		return "", fmt.Errorf("no data directory configured")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("export name must be relative, got %q", RedactPath(name))
	}
	dir := filepath.Join(dataDir, ExportsDir)
	path := filepath.Join(dir, name)
	if err := ValidatePath(path, []string{dir}); err != nil {
		return "", err
	}
	if path == filepath.Clean(dir) {
		return "", fmt.Errorf("export name must name a file")
	}
	return path, nil
}

// resolveExistingParent resolves symlinks on the deepest existing ancestor
// of dir and re-appends the missing tail.
func resolveExistingParent(dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}
	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath reports whether path is base or below it.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}

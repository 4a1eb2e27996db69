// Package security confines rendered exports to known directories.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// canonical returns the absolute form of path with symlinks resolved in its
// deepest existing ancestor. Components below that ancestor do not exist
// yet and cannot be links.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	existing, rest := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
}

// ResolveWithin returns the canonical form of path, or an error if it
// escapes dir, directly or through a symlink.
func ResolveWithin(dir, path string) (string, error) {
	root, err := canonical(dir)
	if err != nil {
		return "", err
	}
	target, err := canonical(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path traversal detected: %s escapes %s", path, dir)
	}
	return target, nil
}

// ValidateExportPath accepts paths under the working directory or the
// system temp directory.
func ValidateExportPath(path string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	allowed := []string{cwd, os.TempDir()}
	for _, dir := range allowed {
		if _, err := ResolveWithin(dir, path); err == nil {
			return nil
		}
	}
	return fmt.Errorf("export path %s must be within one of %v", path, allowed)
}

// ExportPath builds dir/<sanitized name><ext> and checks it stays in dir.
func ExportPath(dir, name, ext string) (string, error) {
	return ResolveWithin(dir, filepath.Join(dir, SanitizeFilename(name)+ext))
}

// SanitizeFilename maps s to a safe file name: ASCII letters, digits, dot,
// underscore and dash are kept, runs of anything else become one
// underscore, and the result is at most 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r < 128 && (r == '.' || r == '_' || r == '-' ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')):
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

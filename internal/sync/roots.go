package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveRoot resolves the source root to a symlink-free absolute path and
// verifies it is a readable directory. Failure here is a configuration
// error, reported before any work starts.
func ResolveRoot(root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %s: %w", root, err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %s: %w", root, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", resolved, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", resolved)
	}
	return resolved, nil
}

// ResolveTarget resolves the mirror target as far as possible: symlinks are
// followed when the path exists, otherwise the absolute form is used so the
// overlap check still sees the real location it would be created at.
func ResolveTarget(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target %s: %w", target, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// CheckOverlap rejects a source/target pair where the two roots are the
// same directory or one contains the other. Mirroring a tree into itself or
// into one of its subdirectories would corrupt the source; both directions
// are fatal configuration errors, raised before any file operation.
func CheckOverlap(source, target string) error {
	source = filepath.Clean(source)
	target = filepath.Clean(target)

	if source == target {
		return fmt.Errorf("target cannot be the same as the source: %s", source)
	}
	if isAncestor(source, target) {
		return fmt.Errorf("target %s is inside the source %s", target, source)
	}
	if isAncestor(target, source) {
		return fmt.Errorf("source %s is inside the target %s", source, target)
	}
	return nil
}

// isAncestor reports whether child sits strictly below parent.
func isAncestor(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

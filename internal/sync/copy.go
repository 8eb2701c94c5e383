package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyChange mirrors one added or updated file from the source root into
// the target root, creating intermediate directories as needed.
func (e *Engine) copyChange(root, target, relPath string) error {
	src := filepath.Join(root, filepath.FromSlash(relPath))
	dst := filepath.Join(target, filepath.FromSlash(relPath))

	if parent := filepath.Dir(dst); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory in target: %s: %w", parent, err)
		}
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed copying %s -> %s: %w", src, dst, err)
	}

	e.logger.Debug("mirrored file", "path", relPath)
	return nil
}

// deleteChange removes the corresponding file in the target, if it exists
// and is a regular file. A directory or other non-regular entry sitting at
// that path is left untouched.
func (e *Engine) deleteChange(target, relPath string) error {
	dst := filepath.Join(target, filepath.FromSlash(relPath))

	info, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s in target: %w", dst, err)
	}
	if !info.Mode().IsRegular() {
		e.logger.Warn("not deleting non-regular entry in target", "path", dst, "mode", info.Mode().String())
		return nil
	}

	if err := os.Remove(dst); err != nil {
		return fmt.Errorf("failed to delete in target: %s: %w", dst, err)
	}
	e.logger.Debug("deleted file", "path", relPath)
	return nil
}

// copyFile copies content, permission bits, and access/modification times
// from src to dst. Content goes through a temp file in the destination
// directory and a rename, so a reader of the target never sees a half
// written file; the timestamps are applied to the final path afterwards.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".dirsnap-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Chmod(srcInfo.Mode().Perm()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to apply permissions (mode %o): %w", srcInfo.Mode().Perm(), err)
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return err
	}

	atime, mtime := fileTimes(srcInfo)
	if err := os.Chtimes(dst, atime, mtime); err != nil {
		return fmt.Errorf("failed to apply timestamps: %w", err)
	}

	return nil
}

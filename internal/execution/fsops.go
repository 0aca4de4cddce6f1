package execution

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// removeDirContents deletes everything under dir while preserving the
// directory itself, so temp folders remain usable for the OS or the
// application that owns them. Returns the bytes freed.
func removeDirContents(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	var freed int64
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		size, sizeErr := entrySize(p, entry.IsDir())
		if err := os.RemoveAll(p); err != nil {
			return freed, fmt.Errorf("failed to remove %s: %w", p, err)
		}
		if sizeErr == nil {
			freed += size
		}
	}
	return freed, nil
}

// entrySize returns the size of a file, or the recursive size of a directory.
func entrySize(p string, isDir bool) (int64, error) {
	if !isDir {
		info, err := os.Lstat(p)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}
	var total int64
	err := filepath.Walk(p, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries just don't count
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// moveTree relocates src to dstDir/basename(src). os.Rename is tried first;
// relocations usually cross drives, so a copy-then-delete fallback handles
// EXDEV.
func moveTree(src, dstDir string) (string, error) {
	if err := os.MkdirAll(dstDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("target %s already exists", dst)
	}

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	if err := copyTree(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return "", err
	}
	if err := os.RemoveAll(src); err != nil {
		return "", fmt.Errorf("copied but failed to remove source %s: %w", src, err)
	}
	return dst, nil
}

// copyTree recursively copies a file or directory tree.
func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src) // #nosec G304 -- paths come from scan results
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm()) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

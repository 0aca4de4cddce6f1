// Package scan discovers cleanup candidates on disk: folder candidates with
// their file listings, and duplicate file groups found by content hashing.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"diskwise/internal/model"
)

// Options configures a scan.
type Options struct {
	// MinFileSize excludes files smaller than this from duplicate
	// detection. Folder scanning ignores it.
	MinFileSize int64
	// MaxDepth limits folder recursion; 0 means unlimited.
	MaxDepth int
}

// DefaultOptions returns the default scan options.
func DefaultOptions() Options {
	return Options{
		MinFileSize: 1,
		MaxDepth:    0,
	}
}

// Scanner walks a scope and yields candidates.
type Scanner struct {
	opts Options
}

// NewScanner creates a scanner with the given options.
func NewScanner(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// ScanFolders walks root and returns one FolderCandidate per directory,
// carrying its immediate file listing and recursive size. The walk honors
// context cancellation between directories.
func (s *Scanner) ScanFolders(ctx context.Context, root string) ([]*model.FolderCandidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	var candidates []*model.FolderCandidate

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.opts.MaxDepth > 0 && depthOf(root, path) > s.opts.MaxDepth {
			return filepath.SkipDir
		}

		cand, err := s.folderCandidate(path)
		if err != nil {
			return nil
		}
		candidates = append(candidates, cand)
		return nil
	})
	if err != nil {
		return candidates, err
	}

	return candidates, nil
}

// folderCandidate builds the candidate for one directory.
func (s *Scanner) folderCandidate(dir string) (*model.FolderCandidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	cand := &model.FolderCandidate{Path: dir}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		cand.FileNames = append(cand.FileNames, entry.Name())
		cand.FileCount++
		if info, err := entry.Info(); err == nil {
			cand.SizeBytes += info.Size()
		}
	}
	return cand, nil
}

func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

package scan

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"diskwise/internal/model"
)

// FindDuplicates walks root and groups byte-identical files by content
// hash. Files are bucketed by size first so only same-size files are ever
// hashed. Groups need at least two members; WastedBytes counts every copy
// beyond the first.
func (s *Scanner) FindDuplicates(ctx context.Context, root string) ([]*model.DuplicateGroup, error) {
	bySize := make(map[int64][]string)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return ctx.Err()
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.Mode().IsRegular() || info.Size() < s.opts.MinFileSize {
			return nil
		}
		bySize[info.Size()] = append(bySize[info.Size()], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	byHash := make(map[string]*model.DuplicateGroup)
	var order []string

	for size, paths := range bySize {
		if len(paths) < 2 {
			continue
		}
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			hash, err := hashFile(p)
			if err != nil {
				continue
			}

			info, err := os.Lstat(p)
			if err != nil {
				continue
			}

			group, ok := byHash[hash]
			if !ok {
				group = &model.DuplicateGroup{
					ID:     uuid.NewString(),
					Hash:   hash,
					Status: model.StatusPending,
				}
				byHash[hash] = group
				order = append(order, hash)
			}
			group.Files = append(group.Files, model.DuplicateFile{
				Path:      p,
				SizeBytes: size,
				ModTime:   info.ModTime(),
			})
		}
	}

	var groups []*model.DuplicateGroup
	for _, hash := range order {
		group := byHash[hash]
		if len(group.Files) < 2 {
			continue
		}
		sort.Slice(group.Files, func(i, j int) bool {
			return group.Files[i].Path < group.Files[j].Path
		})
		size := group.Files[0].SizeBytes
		group.WastedBytes = size * int64(len(group.Files)-1)
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].WastedBytes > groups[j].WastedBytes
	})

	return groups, nil
}

// hashFile computes the SHA-256 of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from the walk
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

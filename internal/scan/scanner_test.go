package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestScanFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), "hello")
	writeFile(t, filepath.Join(root, "cache", "c1.dat"), "cached")
	writeFile(t, filepath.Join(root, "cache", "c2.dat"), "cached too")
	writeFile(t, filepath.Join(root, "cache", "deep", "d1.dat"), "deep")

	scanner := NewScanner(DefaultOptions())
	candidates, err := scanner.ScanFolders(context.Background(), root)
	require.NoError(t, err)

	byPath := make(map[string]int)
	for i, cand := range candidates {
		byPath[cand.Path] = i
	}

	require.Contains(t, byPath, root)
	require.Contains(t, byPath, filepath.Join(root, "cache"))
	require.Contains(t, byPath, filepath.Join(root, "cache", "deep"))

	cache := candidates[byPath[filepath.Join(root, "cache")]]
	assert.ElementsMatch(t, []string{"c1.dat", "c2.dat"}, cache.FileNames, "listing is immediate files only")
	assert.Equal(t, 2, cache.FileCount)
	assert.Equal(t, int64(16), cache.SizeBytes)
}

func TestScanFolders_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "c", "x.txt"), "x")

	scanner := NewScanner(Options{MaxDepth: 1})
	candidates, err := scanner.ScanFolders(context.Background(), root)
	require.NoError(t, err)

	for _, cand := range candidates {
		assert.NotContains(t, cand.Path, filepath.Join("a", "b"))
	}
}

func TestScanFolders_Errors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		scanner := NewScanner(DefaultOptions())
		_, err := scanner.ScanFolders(context.Background(), filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("file root", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "f.txt")
		writeFile(t, file, "x")
		scanner := NewScanner(DefaultOptions())
		_, err := scanner.ScanFolders(context.Background(), file)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		scanner := NewScanner(DefaultOptions())
		_, err := scanner.ScanFolders(ctx, t.TempDir())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFindDuplicates(t *testing.T) {
	root := t.TempDir()
	// Three identical copies and one same-size decoy.
	writeFile(t, filepath.Join(root, "one.bin"), "same-content")
	writeFile(t, filepath.Join(root, "two.bin"), "same-content")
	writeFile(t, filepath.Join(root, "sub", "three.bin"), "same-content")
	writeFile(t, filepath.Join(root, "decoy.bin"), "other-content")
	writeFile(t, filepath.Join(root, "unique.txt"), "nothing like me")

	scanner := NewScanner(DefaultOptions())
	groups, err := scanner.FindDuplicates(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	group := groups[0]
	assert.Len(t, group.Files, 3)
	assert.Equal(t, int64(len("same-content"))*2, group.WastedBytes)
	assert.NotEmpty(t, group.Hash)

	// Same-size files with different content never group together.
	for _, f := range group.Files {
		assert.NotEqual(t, filepath.Join(root, "decoy.bin"), f.Path)
	}
}

func TestFindDuplicates_SortedByWastedBytes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small1"), "aa")
	writeFile(t, filepath.Join(root, "small2"), "aa")
	writeFile(t, filepath.Join(root, "big1"), "bbbbbbbbbbbbbbbb")
	writeFile(t, filepath.Join(root, "big2"), "bbbbbbbbbbbbbbbb")

	scanner := NewScanner(DefaultOptions())
	groups, err := scanner.FindDuplicates(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Greater(t, groups[0].WastedBytes, groups[1].WastedBytes)
}

func TestFindDuplicates_MinFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tiny1"), "aa")
	writeFile(t, filepath.Join(root, "tiny2"), "aa")

	scanner := NewScanner(Options{MinFileSize: 1024})
	groups, err := scanner.FindDuplicates(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

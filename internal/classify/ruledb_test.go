package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileRuleDB(t *testing.T) {
	dir := t.TempDir()
	rulePath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulePath, []byte(`
rules:
  - name: Steam shader cache
    match: steamapps\shadercache
  - name: NVIDIA driver downloads
    match: nvidia/downloads
  - name: broken entry without match
`), 0o600))

	db, err := NewFileRuleDB(rulePath)
	require.NoError(t, err)
	assert.Equal(t, 2, db.Len(), "entries without a match pattern are dropped")

	t.Run("match is normalized across separators and case", func(t *testing.T) {
		ok, name := db.IsKnownSafe(`D:\Steam\SteamApps\ShaderCache`)
		assert.True(t, ok)
		assert.Equal(t, "Steam shader cache", name)
	})

	t.Run("non-matching path", func(t *testing.T) {
		ok, name := db.IsKnownSafe("/home/alice/documents")
		assert.False(t, ok)
		assert.Empty(t, name)
	})
}

func TestNewFileRuleDB_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileRuleDB(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		rulePath := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(rulePath, []byte("rules: [unclosed"), 0o600))
		_, err := NewFileRuleDB(rulePath)
		assert.Error(t, err)
	})
}

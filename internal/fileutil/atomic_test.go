package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "hands.phhs")

	require.NoError(t, WriteFileAtomic(path, []byte("[1]\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[1]\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hands.phhs")

	require.NoError(t, WriteFileAtomic(path, []byte("old"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("new export"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new export", string(data))
}

func TestWriteFileAtomicCreatesDirectories(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "exports", "2026", "hands.phhs")

	require.NoError(t, WriteFileAtomic(path, []byte("data"), 0o600))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteFileAtomicParentIsFile(t *testing.T) {
	t.Parallel()
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(parent, nil, 0o644))

	err := WriteFileAtomic(filepath.Join(parent, "hands.phhs"), []byte("data"), 0o644)
	assert.Error(t, err)
}

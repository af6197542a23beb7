package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInitialScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "3"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "7"), 0o755))
	// Non-numeric entries and plain files are not artifacts
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scratch"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "9"), []byte("x"), 0o644))

	r, err := NewRegistry(dir, nil)
	require.NoError(t, err)

	assert.True(t, r.Available(3))
	assert.True(t, r.Available(7))
	assert.False(t, r.Available(9))
	assert.False(t, r.Available(42))
}

func TestRegistryCreatesTrainedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trained")
	_, err := NewRegistry(dir, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRegistryModelPath(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "42"), r.ModelPath(42))
}

func TestRegistryWatchPicksUpNewModel(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(dir, nil)
	require.NoError(t, err)
	require.NoError(t, r.Watch())
	defer r.Close()

	assert.False(t, r.Available(5))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "5"), 0o755))

	// Debounce plus scheduling slack
	deadline := time.Now().Add(3 * time.Second)
	for !r.Available(5) && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	assert.True(t, r.Available(5))
}

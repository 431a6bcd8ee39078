package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func collectWalk(t *testing.T, root string) []string {
	t.Helper()
	w := NewWalker(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var paths []string
	for r := range w.Walk(context.Background(), root) {
		paths = append(paths, r.Path)
	}
	return paths
}

func TestWalkFindsAudioFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "queen", "jazz", "01.mp3"))
	writeFile(t, filepath.Join(root, "queen", "jazz", "02.flac"))
	writeFile(t, filepath.Join(root, "queen", "jazz", "cover.jpg"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	paths := collectWalk(t, root)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, filepath.Join(root, "queen", "jazz", "01.mp3"))
	assert.Contains(t, paths, filepath.Join(root, "queen", "jazz", "02.flac"))
}

func TestWalkSkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".sync", "cache.mp3"))
	writeFile(t, filepath.Join(root, ".hidden.mp3"))
	writeFile(t, filepath.Join(root, "visible.mp3"))

	paths := collectWalk(t, root)
	assert.Equal(t, []string{filepath.Join(root, "visible.mp3")}, paths)
}

func TestWalkCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp3"))
	writeFile(t, filepath.Join(root, "b.mp3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	w := NewWalker(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	for range w.Walk(ctx, root) {
		count++
	}
	assert.Zero(t, count)
}

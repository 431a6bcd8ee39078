package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/1899nils/Spherix-sub000/internal/metadata/extract"
)

// Walker traverses a library root and discovers audio files.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new walker.
func NewWalker(logger *slog.Logger) *Walker {
	return &Walker{logger: logger}
}

// WalkResult is one discovered audio file.
type WalkResult struct {
	Path string
	Size int64
}

// Walk traverses rootPath and streams discovered audio files. The channel
// closes when the walk completes or the context is canceled. Unreadable
// entries are logged and skipped; the walk keeps going.
func (w *Walker) Walk(ctx context.Context, rootPath string) <-chan WalkResult {
	results := make(chan WalkResult, 100)

	go func() {
		defer close(results)

		err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				w.logger.Error("walk error", "path", path, "error", err)
				return nil
			}

			// Skip hidden files/directories.
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !extract.IsAudioPath(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				w.logger.Error("failed to stat file", "path", path, "error", err)
				return nil
			}

			select {
			case results <- WalkResult{Path: path, Size: info.Size()}:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("walk failed", "root", rootPath, "error", err)
		}
	}()

	return results
}

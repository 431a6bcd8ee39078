// Package scanner walks a library root and reconciles what it finds with
// the relational mirror. Scans are idempotent: re-running over an
// unchanged tree writes nothing and reports zero new or updated tracks.
package scanner

import (
	"context"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/linker"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/search"
	"github.com/1899nils/Spherix-sub000/internal/store"
)

// AlbumLinker matches one album against the external catalog.
type AlbumLinker interface {
	LinkAlbum(ctx context.Context, albumID string) (*linker.Result, error)
}

// MetadataExtractor reads tag and stream metadata from one audio file.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) (*domain.TrackMetadata, error)
}

// Scanner orchestrates the scan phases for a library.
type Scanner struct {
	store     *store.Store
	extractor MetadataExtractor
	linker    AlbumLinker   // nil disables the matching phase
	index     *search.Index // nil disables search indexing
	walker    *Walker
	resolver  *resolver
	log       *logger.Logger
}

// New creates a scanner.
func New(st *store.Store, extractor MetadataExtractor, albumLinker AlbumLinker,
	index *search.Index, log *logger.Logger) *Scanner {
	return &Scanner{
		store:     st,
		extractor: extractor,
		linker:    albumLinker,
		index:     index,
		walker:    NewWalker(log.Logger),
		resolver:  &resolver{store: st},
		log:       log,
	}
}

// Scan runs all phases for the library and returns the final progress.
// Per-file and per-album failures are counted and skipped; only setup
// failures (missing library, unreachable store) abort the run.
func (s *Scanner) Scan(ctx context.Context, libraryID string, onProgress func(domain.ScanProgress)) (domain.ScanProgress, error) {
	lib, err := s.store.GetLibrary(ctx, libraryID)
	if err != nil {
		return domain.ScanProgress{}, err
	}

	tracker := NewTracker(libraryID, onProgress)
	s.log.Info("scan started", "library_id", libraryID, "root", lib.RootPath)

	// Discovering: enumerate audio files up front so the scanning phase
	// has a meaningful total.
	var files []WalkResult
	for res := range s.walker.Walk(ctx, lib.RootPath) {
		files = append(files, res)
	}
	if err := ctx.Err(); err != nil {
		return tracker.Snapshot(), err
	}

	// Scanning: extract and reconcile file by file.
	tracker.SetPhase(domain.PhaseScanning)
	tracker.SetTotal(len(files))

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return tracker.Snapshot(), err
		}

		tracker.File(f.Path)
		seen[f.Path] = struct{}{}

		if err := s.scanFile(ctx, lib, f.Path, tracker); err != nil {
			s.log.Warn("file skipped", "path", f.Path, "error", err)
			tracker.Add(func(c *domain.ScanCounters) { c.Errors++ })
		}
	}

	// Cleanup: flag rows whose files vanished. Never deletes.
	tracker.SetPhase(domain.PhaseCleanup)
	flagged, err := s.store.FlagMissingTracks(ctx, libraryID, seen)
	if err != nil {
		return tracker.Snapshot(), err
	}
	tracker.Add(func(c *domain.ScanCounters) { c.RemovedTracks = flagged })

	// Matching: auto-link unlinked albums touched by this library.
	tracker.SetPhase(domain.PhaseMatching)
	if s.linker != nil {
		if err := s.matchAlbums(ctx, libraryID, tracker); err != nil {
			return tracker.Snapshot(), err
		}
	}

	if err := s.store.TouchLibraryScanned(ctx, libraryID, time.Now().UTC()); err != nil {
		return tracker.Snapshot(), err
	}

	if s.index != nil {
		if err := s.reindexLibrary(ctx, libraryID); err != nil {
			s.log.Warn("search reindex failed", "library_id", libraryID, "error", err)
		}
	}

	tracker.Finish()
	progress := tracker.Snapshot()
	s.log.Info("scan completed",
		"library_id", libraryID,
		"files", progress.Counters.Files,
		"new", progress.Counters.NewTracks,
		"updated", progress.Counters.UpdatedTracks,
		"flagged_missing", progress.Counters.RemovedTracks,
		"restored", progress.Counters.RestoredTracks,
		"auto_linked", progress.Counters.AutoLinkedAlbums,
		"errors", progress.Counters.Errors,
	)
	return progress, nil
}

// scanFile reconciles a single audio file into the mirror.
func (s *Scanner) scanFile(ctx context.Context, lib *domain.Library, path string, tracker *Tracker) error {
	md, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return err
	}

	artist, err := s.resolver.resolveArtist(ctx, md)
	if err != nil {
		return err
	}

	album, err := s.resolver.resolveAlbum(ctx, artist, md)
	if err != nil {
		return err
	}

	outcome, err := upsertTrack(ctx, s.store, lib.ID, path, artist, album, md)
	if err != nil {
		return err
	}

	tracker.Add(func(c *domain.ScanCounters) {
		if outcome.created {
			c.NewTracks++
		}
		if outcome.updated {
			c.UpdatedTracks++
		}
		if outcome.restored {
			c.RestoredTracks++
		}
	})
	return nil
}

// matchAlbums runs the auto-linker over every unlinked album in the
// library. Conflicts and catalog failures count as errors and move on.
func (s *Scanner) matchAlbums(ctx context.Context, libraryID string, tracker *Tracker) error {
	albumIDs, err := s.store.ListAlbumIDsByLibrary(ctx, libraryID)
	if err != nil {
		return err
	}
	tracker.SetTotal(len(albumIDs))

	for _, albumID := range albumIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		tracker.Step()

		album, err := s.store.GetAlbum(ctx, albumID)
		if err != nil {
			tracker.Add(func(c *domain.ScanCounters) { c.Errors++ })
			continue
		}
		if album.Linked() {
			continue
		}

		result, err := s.linker.LinkAlbum(ctx, albumID)
		if err != nil {
			s.log.Warn("auto-link failed", "album_id", albumID, "error", err)
			tracker.Add(func(c *domain.ScanCounters) { c.Errors++ })
			continue
		}

		tracker.Add(func(c *domain.ScanCounters) {
			if result.Confidence > 0 {
				c.MatchedAlbums++
			}
			if result.Linked {
				c.AutoLinkedAlbums++
			}
		})
	}
	return nil
}

// reindexLibrary rebuilds search documents for the library's contents.
func (s *Scanner) reindexLibrary(ctx context.Context, libraryID string) error {
	artists, err := s.store.ListArtists(ctx)
	if err != nil {
		return err
	}
	artistNames := make(map[string]string, len(artists))

	docs := make([]*search.Document, 0, len(artists))
	for _, a := range artists {
		artistNames[a.ID] = a.Name
		docs = append(docs, search.ArtistDocument(a))
	}

	albumTitles := make(map[string]string)
	albumIDs, err := s.store.ListAlbumIDsByLibrary(ctx, libraryID)
	if err != nil {
		return err
	}
	for _, albumID := range albumIDs {
		album, err := s.store.GetAlbum(ctx, albumID)
		if err != nil {
			continue
		}
		albumTitles[album.ID] = album.Title
		docs = append(docs, search.AlbumDocument(album, artistNames[album.ArtistID]))
	}

	tracks, err := s.store.ListTracksByLibrary(ctx, libraryID)
	if err != nil {
		return err
	}
	for _, t := range tracks {
		docs = append(docs, search.TrackDocument(t, artistNames[t.ArtistID], albumTitles[t.AlbumID]))
	}

	return s.index.IndexDocuments(docs)
}

package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"libraries", "artists", "albums", "tracks"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func testLibrary(t *testing.T, s *Store) *domain.Library {
	t.Helper()
	now := time.Now().UTC()
	lib := &domain.Library{
		ID:        "lib_test1",
		Name:      "Music",
		RootPath:  "/music",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateLibrary(context.Background(), lib); err != nil {
		t.Fatalf("create library: %v", err)
	}
	return lib
}

func testArtist(t *testing.T, s *Store, id, name, mbid string) *domain.Artist {
	t.Helper()
	now := time.Now().UTC()
	a := &domain.Artist{
		ID:          id,
		Name:        name,
		SortName:    name,
		MBZArtistID: mbid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateArtist(context.Background(), a); err != nil {
		t.Fatalf("create artist: %v", err)
	}
	return a
}

func testAlbum(t *testing.T, s *Store, id, artistID, title string) *domain.Album {
	t.Helper()
	now := time.Now().UTC()
	al := &domain.Album{
		ID:        id,
		Title:     title,
		ArtistID:  artistID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateAlbum(context.Background(), al); err != nil {
		t.Fatalf("create album: %v", err)
	}
	return al
}

func testTrack(t *testing.T, s *Store, id, libID, artistID, albumID, path string) *domain.Track {
	t.Helper()
	now := time.Now().UTC()
	tr := &domain.Track{
		ID:         id,
		Path:       path,
		LibraryID:  libID,
		AlbumID:    albumID,
		ArtistID:   artistID,
		Title:      filepath.Base(path),
		DurationMS: 180000,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateTrack(context.Background(), tr); err != nil {
		t.Fatalf("create track: %v", err)
	}
	return tr
}

func TestLibraryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := testLibrary(t, s)

	got, err := s.GetLibrary(ctx, lib.ID)
	if err != nil {
		t.Fatalf("get library: %v", err)
	}
	if got.Name != lib.Name || got.RootPath != lib.RootPath {
		t.Errorf("got %+v, want %+v", got, lib)
	}
	if !got.LastScannedAt.IsZero() {
		t.Errorf("expected zero last_scanned_at, got %v", got.LastScannedAt)
	}

	at := time.Now().UTC()
	if err := s.TouchLibraryScanned(ctx, lib.ID, at); err != nil {
		t.Fatalf("touch scanned: %v", err)
	}
	got, err = s.GetLibrary(ctx, lib.ID)
	if err != nil {
		t.Fatalf("get library: %v", err)
	}
	if got.LastScannedAt.IsZero() {
		t.Error("expected last_scanned_at to be set")
	}

	if _, err := s.GetLibrary(ctx, "lib_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArtistUniqueExternalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	testArtist(t, s, "art_1", "The Beatles", "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d")

	now := time.Now().UTC()
	dup := &domain.Artist{
		ID:          "art_2",
		Name:        "Beatles, The",
		SortName:    "Beatles, The",
		MBZArtistID: "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateArtist(ctx, dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetArtistByMBID(ctx, "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d")
	if err != nil {
		t.Fatalf("get by mbid: %v", err)
	}
	if got.ID != "art_1" {
		t.Errorf("expected art_1, got %s", got.ID)
	}
}

func TestTrackPathUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := testLibrary(t, s)
	artist := testArtist(t, s, "art_1", "Queen", "")
	album := testAlbum(t, s, "alb_1", artist.ID, "A Night at the Opera")
	testTrack(t, s, "trk_1", lib.ID, artist.ID, album.ID, "/music/queen/01.mp3")

	now := time.Now().UTC()
	dup := &domain.Track{
		ID:        "trk_2",
		Path:      "/music/queen/01.mp3",
		LibraryID: lib.ID,
		AlbumID:   album.ID,
		ArtistID:  artist.ID,
		Title:     "Death on Two Legs",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateTrack(ctx, dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetTrackByPath(ctx, "/music/queen/01.mp3")
	if err != nil {
		t.Fatalf("get by path: %v", err)
	}
	if got.ID != "trk_1" {
		t.Errorf("expected trk_1, got %s", got.ID)
	}
}

func TestFlagMissingTracks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := testLibrary(t, s)
	artist := testArtist(t, s, "art_1", "Queen", "")
	album := testAlbum(t, s, "alb_1", artist.ID, "A Night at the Opera")
	testTrack(t, s, "trk_1", lib.ID, artist.ID, album.ID, "/music/queen/01.mp3")
	testTrack(t, s, "trk_2", lib.ID, artist.ID, album.ID, "/music/queen/02.mp3")
	testTrack(t, s, "trk_3", lib.ID, artist.ID, album.ID, "/music/queen/03.mp3")

	// Second scan only saw tracks 1 and 3.
	seen := map[string]struct{}{
		"/music/queen/01.mp3": {},
		"/music/queen/03.mp3": {},
	}
	flagged, err := s.FlagMissingTracks(ctx, lib.ID, seen)
	if err != nil {
		t.Fatalf("flag missing: %v", err)
	}
	if flagged != 1 {
		t.Errorf("expected 1 flagged, got %d", flagged)
	}

	got, err := s.GetTrack(ctx, "trk_2")
	if err != nil {
		t.Fatalf("get track: %v", err)
	}
	if !got.Missing {
		t.Error("expected trk_2 to be flagged missing")
	}

	// The row survives; nothing is deleted.
	n, err := s.CountTracks(ctx, lib.ID)
	if err != nil {
		t.Fatalf("count tracks: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}

	// Flagging again with the same set is a no-op.
	flagged, err = s.FlagMissingTracks(ctx, lib.ID, seen)
	if err != nil {
		t.Fatalf("flag missing again: %v", err)
	}
	if flagged != 0 {
		t.Errorf("expected 0 newly flagged, got %d", flagged)
	}
}

func TestDeleteLibraryPreservesTracks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := testLibrary(t, s)
	artist := testArtist(t, s, "art_1", "Queen", "")
	album := testAlbum(t, s, "alb_1", artist.ID, "A Night at the Opera")
	testTrack(t, s, "trk_1", lib.ID, artist.ID, album.ID, "/music/queen/01.mp3")

	if err := s.DeleteLibrary(ctx, lib.ID); err != nil {
		t.Fatalf("delete library: %v", err)
	}

	if _, err := s.GetLibrary(ctx, lib.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := s.GetTrack(ctx, "trk_1")
	if err != nil {
		t.Fatalf("get track: %v", err)
	}
	if !got.Missing {
		t.Error("expected surviving track to be flagged missing")
	}
	if got.LibraryID != "" {
		t.Errorf("expected surviving track to be detached, got library %q", got.LibraryID)
	}
}

func TestListAlbumIDsByLibrary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lib := testLibrary(t, s)
	artist := testArtist(t, s, "art_1", "Queen", "")
	a1 := testAlbum(t, s, "alb_1", artist.ID, "A Night at the Opera")
	a2 := testAlbum(t, s, "alb_2", artist.ID, "News of the World")
	// Album with no tracks in this library must not appear.
	testAlbum(t, s, "alb_3", artist.ID, "Jazz")

	testTrack(t, s, "trk_1", lib.ID, artist.ID, a1.ID, "/music/queen/01.mp3")
	testTrack(t, s, "trk_2", lib.ID, artist.ID, a2.ID, "/music/queen/02.mp3")

	ids, err := s.ListAlbumIDsByLibrary(ctx, lib.ID)
	if err != nil {
		t.Fatalf("list album ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 albums, got %d: %v", len(ids), ids)
	}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// trackColumns is the ordered list of columns selected in track queries.
// Must match the scan order in scanTrack.
const trackColumns = `id, created_at, updated_at, path, library_id, album_id, artist_id,
	title, track_number, disc_number, year, genre, duration_ms, codec, bitrate,
	sample_rate, channels, size, missing, mbz_track_id`

// scanTrack scans a sql.Row (or sql.Rows via its Scan method) into a domain.Track.
func scanTrack(scanner interface{ Scan(dest ...any) error }) (*domain.Track, error) {
	var t domain.Track

	var (
		createdAt string
		updatedAt string
		libraryID sql.NullString
		albumID   sql.NullString
		artistID  sql.NullString
		year      sql.NullInt64
		genre     sql.NullString
		codec     sql.NullString
		missing   int
		mbzID     sql.NullString
	)

	err := scanner.Scan(
		&t.ID,
		&createdAt,
		&updatedAt,
		&t.Path,
		&libraryID,
		&albumID,
		&artistID,
		&t.Title,
		&t.TrackNumber,
		&t.DiscNumber,
		&year,
		&genre,
		&t.DurationMS,
		&codec,
		&t.Bitrate,
		&t.SampleRate,
		&t.Channels,
		&t.Size,
		&missing,
		&mbzID,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	t.LibraryID = libraryID.String
	t.AlbumID = albumID.String
	t.ArtistID = artistID.String
	t.Year = int(year.Int64)
	t.Genre = genre.String
	t.Codec = codec.String
	t.Missing = missing != 0
	t.MBZTrackID = mbzID.String

	return &t, nil
}

// CreateTrack inserts a new track.
// Returns ErrAlreadyExists on duplicate ID, path, or external id.
func (s *Store) CreateTrack(ctx context.Context, t *domain.Track) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (
			id, created_at, updated_at, path, library_id, album_id, artist_id,
			title, track_number, disc_number, year, genre, duration_ms, codec,
			bitrate, sample_rate, channels, size, missing, mbz_track_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
		t.Path,
		nullString(t.LibraryID),
		nullString(t.AlbumID),
		nullString(t.ArtistID),
		t.Title,
		t.TrackNumber,
		t.DiscNumber,
		nullInt(t.Year),
		nullString(t.Genre),
		t.DurationMS,
		nullString(t.Codec),
		t.Bitrate,
		t.SampleRate,
		t.Channels,
		t.Size,
		boolToInt(t.Missing),
		nullString(t.MBZTrackID),
	)
	return translateError(err)
}

// GetTrack retrieves a track by ID.
func (s *Store) GetTrack(ctx context.Context, id string) (*domain.Track, error) {
	return s.getTrackBy(ctx, `id = ?`, id)
}

// GetTrackByPath retrieves a track by its unique file path.
func (s *Store) GetTrackByPath(ctx context.Context, path string) (*domain.Track, error) {
	return s.getTrackBy(ctx, `path = ?`, path)
}

// GetTrackByMBID retrieves a track by MusicBrainz track id.
func (s *Store) GetTrackByMBID(ctx context.Context, mbid string) (*domain.Track, error) {
	return s.getTrackBy(ctx, `mbz_track_id = ?`, mbid)
}

func (s *Store) getTrackBy(ctx context.Context, where string, arg any) (*domain.Track, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE `+where, arg)

	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTrack performs a full row update on an existing track.
// Returns ErrNotFound if the track does not exist and ErrAlreadyExists if
// the path or external id is claimed by another track.
func (s *Store) UpdateTrack(ctx context.Context, t *domain.Track) error {
	t.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE tracks SET
			updated_at = ?, path = ?, library_id = ?, album_id = ?, artist_id = ?,
			title = ?, track_number = ?, disc_number = ?, year = ?, genre = ?,
			duration_ms = ?, codec = ?, bitrate = ?, sample_rate = ?, channels = ?,
			size = ?, missing = ?, mbz_track_id = ?
		WHERE id = ?`,
		formatTime(t.UpdatedAt),
		t.Path,
		nullString(t.LibraryID),
		nullString(t.AlbumID),
		nullString(t.ArtistID),
		t.Title,
		t.TrackNumber,
		t.DiscNumber,
		nullInt(t.Year),
		nullString(t.Genre),
		t.DurationMS,
		nullString(t.Codec),
		t.Bitrate,
		t.SampleRate,
		t.Channels,
		t.Size,
		boolToInt(t.Missing),
		nullString(t.MBZTrackID),
		t.ID,
	)
	if err != nil {
		return translateError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTracksByAlbum returns an album's tracks ordered by disc then track number.
func (s *Store) ListTracksByAlbum(ctx context.Context, albumID string) ([]*domain.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE album_id = ?
		ORDER BY disc_number ASC, track_number ASC, path ASC`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTracks(rows)
}

// ListTracksByLibrary returns all of a library's tracks ordered by path.
func (s *Store) ListTracksByLibrary(ctx context.Context, libraryID string) ([]*domain.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE library_id = ?
		ORDER BY path ASC`, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTracks(rows)
}

func collectTracks(rows *sql.Rows) ([]*domain.Track, error) {
	var tracks []*domain.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// FlagMissingTracks flags missing=true on every non-missing track of the
// library whose path was not observed in the current scan pass. Returns the
// number of rows flagged. Rows are never deleted so downstream references
// (playlists, history) survive.
func (s *Store) FlagMissingTracks(ctx context.Context, libraryID string, seen map[string]struct{}) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path FROM tracks
		WHERE library_id = ? AND missing = 0`, libraryID)
	if err != nil {
		return 0, err
	}

	var vanished []string
	for rows.Next() {
		var trackID, path string
		if err := rows.Scan(&trackID, &path); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := seen[path]; !ok {
			vanished = append(vanished, trackID)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	if len(vanished) == 0 {
		return 0, nil
	}

	now := formatTime(time.Now())

	// Chunk to stay within SQLite's bound-parameter limit.
	const chunkSize = 500
	for start := 0; start < len(vanished); start += chunkSize {
		end := min(start+chunkSize, len(vanished))
		chunk := vanished[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, now)
		for _, trackID := range chunk {
			args = append(args, trackID)
		}

		query := fmt.Sprintf(
			`UPDATE tracks SET missing = 1, updated_at = ? WHERE id IN (%s)`,
			placeholders)
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}

	return len(vanished), nil
}

// CountTracks returns the number of track rows in a library.
func (s *Store) CountTracks(ctx context.Context, libraryID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tracks WHERE library_id = ?`, libraryID).Scan(&n)
	return n, err
}

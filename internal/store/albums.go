package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// albumColumns is the ordered list of columns selected in album queries.
// Must match the scan order in scanAlbum.
const albumColumns = `id, created_at, updated_at, title, artist_id, year, genre,
	label, country, disc_count, track_count, cover_path, cover_blurhash, mbz_release_id`

// scanAlbum scans a sql.Row (or sql.Rows via its Scan method) into a domain.Album.
func scanAlbum(scanner interface{ Scan(dest ...any) error }) (*domain.Album, error) {
	var a domain.Album

	var (
		createdAt     string
		updatedAt     string
		year          sql.NullInt64
		genre         sql.NullString
		label         sql.NullString
		country       sql.NullString
		coverPath     sql.NullString
		coverBlurHash sql.NullString
		mbzID         sql.NullString
	)

	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.Title,
		&a.ArtistID,
		&year,
		&genre,
		&label,
		&country,
		&a.DiscCount,
		&a.TrackCount,
		&coverPath,
		&coverBlurHash,
		&mbzID,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	a.Year = int(year.Int64)
	a.Genre = genre.String
	a.Label = label.String
	a.Country = country.String
	a.CoverPath = coverPath.String
	a.CoverBlurHash = coverBlurHash.String
	a.MBZReleaseID = mbzID.String

	return &a, nil
}

// CreateAlbum inserts a new album.
// Returns ErrAlreadyExists on duplicate ID or external id.
func (s *Store) CreateAlbum(ctx context.Context, a *domain.Album) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO albums (
			id, created_at, updated_at, title, artist_id, year, genre,
			label, country, disc_count, track_count, cover_path, cover_blurhash, mbz_release_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.Title,
		a.ArtistID,
		nullInt(a.Year),
		nullString(a.Genre),
		nullString(a.Label),
		nullString(a.Country),
		a.DiscCount,
		a.TrackCount,
		nullString(a.CoverPath),
		nullString(a.CoverBlurHash),
		nullString(a.MBZReleaseID),
	)
	return translateError(err)
}

// GetAlbum retrieves an album by ID.
func (s *Store) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	return s.getAlbumBy(ctx, `id = ?`, id)
}

// GetAlbumByMBID retrieves an album by MusicBrainz release id.
func (s *Store) GetAlbumByMBID(ctx context.Context, mbid string) (*domain.Album, error) {
	return s.getAlbumBy(ctx, `mbz_release_id = ?`, mbid)
}

func (s *Store) getAlbumBy(ctx context.Context, where string, args ...any) (*domain.Album, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE `+where, args...)

	a, err := scanAlbum(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAlbumByArtistAndTitle retrieves an album by exact title under an artist.
func (s *Store) GetAlbumByArtistAndTitle(ctx context.Context, artistID, title string) (*domain.Album, error) {
	return s.getAlbumBy(ctx, `artist_id = ? AND title = ?`, artistID, title)
}

// UpdateAlbum performs a full row update on an existing album.
// Returns ErrNotFound if the album does not exist and ErrAlreadyExists if
// the external id is claimed by another album.
func (s *Store) UpdateAlbum(ctx context.Context, a *domain.Album) error {
	a.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE albums SET
			updated_at = ?, title = ?, artist_id = ?, year = ?, genre = ?,
			label = ?, country = ?, disc_count = ?, track_count = ?,
			cover_path = ?, cover_blurhash = ?, mbz_release_id = ?
		WHERE id = ?`,
		formatTime(a.UpdatedAt),
		a.Title,
		a.ArtistID,
		nullInt(a.Year),
		nullString(a.Genre),
		nullString(a.Label),
		nullString(a.Country),
		a.DiscCount,
		a.TrackCount,
		nullString(a.CoverPath),
		nullString(a.CoverBlurHash),
		nullString(a.MBZReleaseID),
		a.ID,
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

// ListAlbumIDsByLibrary returns the distinct albums referenced by tracks
// of a library, in stable id order. Used by the matching phase.
func (s *Store) ListAlbumIDsByLibrary(ctx context.Context, libraryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT album_id FROM tracks
		WHERE library_id = ? AND album_id IS NOT NULL
		ORDER BY album_id ASC`, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountAlbums returns the number of album rows.
func (s *Store) CountAlbums(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&n)
	return n, err
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// artistColumns is the ordered list of columns selected in artist queries.
// Must match the scan order in scanArtist.
const artistColumns = `id, created_at, updated_at, name, sort_name, mbz_artist_id`

// scanArtist scans a sql.Row (or sql.Rows via its Scan method) into a domain.Artist.
func scanArtist(scanner interface{ Scan(dest ...any) error }) (*domain.Artist, error) {
	var a domain.Artist

	var (
		createdAt string
		updatedAt string
		mbzID     sql.NullString
	)

	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.Name,
		&a.SortName,
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
	a.MBZArtistID = mbzID.String

	return &a, nil
}

// CreateArtist inserts a new artist.
// Returns ErrAlreadyExists on duplicate ID or external id.
func (s *Store) CreateArtist(ctx context.Context, a *domain.Artist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artists (id, created_at, updated_at, name, sort_name, mbz_artist_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.Name,
		a.SortName,
		nullString(a.MBZArtistID),
	)
	return translateError(err)
}

// GetArtist retrieves an artist by ID.
func (s *Store) GetArtist(ctx context.Context, id string) (*domain.Artist, error) {
	return s.getArtistBy(ctx, `id = ?`, id)
}

// GetArtistByMBID retrieves an artist by MusicBrainz artist id.
func (s *Store) GetArtistByMBID(ctx context.Context, mbid string) (*domain.Artist, error) {
	return s.getArtistBy(ctx, `mbz_artist_id = ?`, mbid)
}

// GetArtistByName retrieves an artist by exact name.
func (s *Store) GetArtistByName(ctx context.Context, name string) (*domain.Artist, error) {
	return s.getArtistBy(ctx, `name = ?`, name)
}

func (s *Store) getArtistBy(ctx context.Context, where string, arg any) (*domain.Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE `+where, arg)

	a, err := scanArtist(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateArtist performs a full row update on an existing artist.
// Returns ErrNotFound if the artist does not exist and ErrAlreadyExists
// if the external id is claimed by another artist.
func (s *Store) UpdateArtist(ctx context.Context, a *domain.Artist) error {
	a.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE artists SET updated_at = ?, name = ?, sort_name = ?, mbz_artist_id = ?
		WHERE id = ?`,
		formatTime(a.UpdatedAt),
		a.Name,
		a.SortName,
		nullString(a.MBZArtistID),
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

// ListArtists returns all artists ordered by sort name.
func (s *Store) ListArtists(ctx context.Context) ([]*domain.Artist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artistColumns+` FROM artists ORDER BY sort_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artists []*domain.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// CountArtists returns the number of artist rows.
func (s *Store) CountArtists(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artists`).Scan(&n)
	return n, err
}

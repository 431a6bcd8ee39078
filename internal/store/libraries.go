package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// libraryColumns is the ordered list of columns selected in library queries.
// Must match the scan order in scanLibrary.
const libraryColumns = `id, created_at, updated_at, name, root_path, last_scanned_at`

// scanLibrary scans a sql.Row (or sql.Rows via its Scan method) into a domain.Library.
func scanLibrary(scanner interface{ Scan(dest ...any) error }) (*domain.Library, error) {
	var lib domain.Library

	var (
		createdAt     string
		updatedAt     string
		lastScannedAt sql.NullString
	)

	err := scanner.Scan(
		&lib.ID,
		&createdAt,
		&updatedAt,
		&lib.Name,
		&lib.RootPath,
		&lastScannedAt,
	)
	if err != nil {
		return nil, err
	}

	lib.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	lib.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	lib.LastScannedAt, err = parseNullableTime(lastScannedAt)
	if err != nil {
		return nil, err
	}

	return &lib, nil
}

// CreateLibrary inserts a new library.
// Returns ErrAlreadyExists on duplicate ID.
func (s *Store) CreateLibrary(ctx context.Context, lib *domain.Library) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO libraries (id, created_at, updated_at, name, root_path, last_scanned_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lib.ID,
		formatTime(lib.CreatedAt),
		formatTime(lib.UpdatedAt),
		lib.Name,
		lib.RootPath,
		nullTime(lib.LastScannedAt),
	)
	return translateError(err)
}

// GetLibrary retrieves a library by ID.
// Returns ErrNotFound if the library does not exist.
func (s *Store) GetLibrary(ctx context.Context, id string) (*domain.Library, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+libraryColumns+` FROM libraries WHERE id = ?`, id)

	lib, err := scanLibrary(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// ListLibraries returns all libraries ordered by creation time.
func (s *Store) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+libraryColumns+` FROM libraries ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libraries []*domain.Library
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		libraries = append(libraries, lib)
	}
	return libraries, rows.Err()
}

// UpdateLibrary performs a full row update on an existing library.
// Returns ErrNotFound if the library does not exist.
func (s *Store) UpdateLibrary(ctx context.Context, lib *domain.Library) error {
	lib.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE libraries SET updated_at = ?, name = ?, root_path = ?, last_scanned_at = ?
		WHERE id = ?`,
		formatTime(lib.UpdatedAt),
		lib.Name,
		lib.RootPath,
		nullTime(lib.LastScannedAt),
		lib.ID,
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

// DeleteLibrary removes a library registration. Its track rows are
// detached and flagged missing rather than deleted so references
// survive if the library is re-registered over the same tree.
func (s *Store) DeleteLibrary(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE tracks SET library_id = NULL, missing = 1, updated_at = ?
		WHERE library_id = ?`,
		formatTime(time.Now()), id)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM libraries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// TouchLibraryScanned records the completion time of a scan run.
func (s *Store) TouchLibraryScanned(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE libraries SET updated_at = ?, last_scanned_at = ? WHERE id = ?`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
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

// Package domain defines the core entities of the Spherix music library.
package domain

import "time"

// Library represents a music collection rooted at a filesystem path.
// Scans mirror the files under RootPath into artists, albums and tracks.
type Library struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RootPath string `json:"root_path"`

	// LastScannedAt is set when a scan run completes. Zero until the
	// first successful scan.
	LastScannedAt time.Time `json:"last_scanned_at,omitzero"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

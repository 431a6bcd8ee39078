// Package search provides full-text search over the library mirror using
// Bleve. Artists, albums, and tracks live in one unified index with type
// discrimination so a single query covers the whole catalog.
package search

import (
	"github.com/1899nils/Spherix-sub000/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeArtist DocType = "artist"
	DocTypeAlbum  DocType = "album"
	DocTypeTrack  DocType = "track"
)

// Document is the unified structure for the Bleve index. Artist and album
// names are denormalized into child documents so one query matches across
// the hierarchy.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary searchable text: artist name, album title, or track title.
	Name string `json:"name"`

	// Denormalized context (empty where not applicable).
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`

	Genre string `json:"genre,omitempty"`
	Year  int    `json:"year,omitempty"`

	// Track-only: files flagged missing stay searchable but filterable.
	Missing bool `json:"missing,omitempty"`

	// Unix millis, for recency sorting.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping (Bleve defaults to Go field names otherwise).
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Artist != "" {
		m["artist"] = d.Artist
	}
	if d.Album != "" {
		m["album"] = d.Album
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.Missing {
		m["missing"] = true
	}

	return m
}

// ArtistDocument converts a domain Artist to its index document.
func ArtistDocument(a *domain.Artist) *Document {
	return &Document{
		ID:        a.ID,
		Type:      DocTypeArtist,
		Name:      a.Name,
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
}

// AlbumDocument converts a domain Album to its index document. The artist
// name is denormalized by the caller since search does not read the store.
func AlbumDocument(al *domain.Album, artistName string) *Document {
	return &Document{
		ID:        al.ID,
		Type:      DocTypeAlbum,
		Name:      al.Title,
		Artist:    artistName,
		Genre:     al.Genre,
		Year:      al.Year,
		CreatedAt: al.CreatedAt.UnixMilli(),
		UpdatedAt: al.UpdatedAt.UnixMilli(),
	}
}

// TrackDocument converts a domain Track to its index document.
func TrackDocument(t *domain.Track, artistName, albumTitle string) *Document {
	return &Document{
		ID:        t.ID,
		Type:      DocTypeTrack,
		Name:      t.Title,
		Artist:    artistName,
		Album:     albumTitle,
		Missing:   t.Missing,
		CreatedAt: t.CreatedAt.UnixMilli(),
		UpdatedAt: t.UpdatedAt.UnixMilli(),
	}
}

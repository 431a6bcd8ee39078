package domain

import "time"

// Album is a release grouping of tracks by a primary artist.
type Album struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ArtistID string `json:"artist_id"`

	Year    int    `json:"year,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Label   string `json:"label,omitempty"`
	Country string `json:"country,omitempty"`

	DiscCount  int `json:"disc_count,omitempty"`
	TrackCount int `json:"track_count,omitempty"`

	CoverPath     string `json:"cover_path,omitempty"`
	CoverBlurHash string `json:"cover_blur_hash,omitempty"`

	// MBZReleaseID links the album to a MusicBrainz release. Set either by
	// tag extraction or by the auto-linker; unique across albums.
	MBZReleaseID string `json:"mbz_release_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Linked reports whether the album already carries a catalog identity.
func (a *Album) Linked() bool {
	return a.MBZReleaseID != ""
}

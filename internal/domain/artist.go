package domain

import "time"

// Artist is a performing or credited artist.
//
// MBZArtistID is the MusicBrainz artist id. It is unique when present and,
// once set, is only replaced by a more authoritative write (the auto-linker);
// a scan that extracts no id never clears it.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// SortName moves a leading definite article to the end:
	// "The Beatles" -> "Beatles, The".
	SortName string `json:"sort_name"`

	MBZArtistID string `json:"mbz_artist_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

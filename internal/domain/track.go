package domain

import "time"

// Track is a single audio file in a library. Path is the reconciliation
// key: re-scanning an unchanged file set must never create a second row
// for the same path.
type Track struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	LibraryID string `json:"library_id"`

	AlbumID  string `json:"album_id,omitempty"`
	ArtistID string `json:"artist_id,omitempty"`

	Title       string `json:"title"`
	TrackNumber int    `json:"track_number,omitempty"`
	DiscNumber  int    `json:"disc_number,omitempty"`
	Year        int    `json:"year,omitempty"`
	Genre       string `json:"genre,omitempty"`

	DurationMS int64  `json:"duration_ms"`
	Codec      string `json:"codec,omitempty"`
	Bitrate    int    `json:"bitrate,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	Size       int64  `json:"size,omitempty"`

	MBZTrackID string `json:"mbz_track_id,omitempty"`

	// Missing marks a row whose backing file was absent in the latest
	// scan. Rows are flagged, never deleted, so playlist and history
	// references survive until the file reappears.
	Missing bool `json:"missing,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrackMetadata is the extractor's view of one audio file: best-effort
// partial data mapped from whatever tags the file carries.
type TrackMetadata struct {
	Title      string
	ArtistName string
	AlbumTitle string

	TrackNumber int
	DiscNumber  int
	Year        int
	Genre       string

	DurationMS int64
	Codec      string
	Bitrate    int
	SampleRate int
	Channels   int
	Size       int64

	MBZArtistID  string
	MBZReleaseID string
	MBZTrackID   string
}

// MergeTrack applies incoming scan metadata onto an existing track row.
//
// Descriptive and technical fields always refresh; the external id is
// sticky and only replaced when the incoming extraction supplies one.
// Touching a track always clears the missing flag. The function is pure
// so the invariant is testable in isolation.
func MergeTrack(existing Track, incoming TrackMetadata) Track {
	merged := existing

	merged.Title = incoming.Title
	merged.TrackNumber = incoming.TrackNumber
	merged.DiscNumber = incoming.DiscNumber
	merged.Year = incoming.Year
	merged.Genre = incoming.Genre

	merged.DurationMS = incoming.DurationMS
	merged.Codec = incoming.Codec
	merged.Bitrate = incoming.Bitrate
	merged.SampleRate = incoming.SampleRate
	merged.Channels = incoming.Channels
	merged.Size = incoming.Size

	if incoming.MBZTrackID != "" {
		merged.MBZTrackID = incoming.MBZTrackID
	}

	merged.Missing = false
	return merged
}

package domain

import (
	"testing"
	"time"
)

func TestMergeTrackRefreshesDescriptiveFields(t *testing.T) {
	existing := Track{
		ID:         "trk_1",
		Path:       "/music/a.mp3",
		Title:      "Old Title",
		Year:       1999,
		DurationMS: 1000,
		Bitrate:    128,
	}
	incoming := TrackMetadata{
		Title:      "New Title",
		Year:       2001,
		DurationMS: 2000,
		Bitrate:    320,
		Codec:      "flac",
	}

	merged := MergeTrack(existing, incoming)

	if merged.Title != "New Title" {
		t.Errorf("title = %q, want New Title", merged.Title)
	}
	if merged.Year != 2001 || merged.DurationMS != 2000 || merged.Bitrate != 320 || merged.Codec != "flac" {
		t.Errorf("technical fields not refreshed: %+v", merged)
	}
	if merged.ID != "trk_1" || merged.Path != "/music/a.mp3" {
		t.Errorf("identity fields must not change: %+v", merged)
	}
}

func TestMergeTrackExternalIDSticky(t *testing.T) {
	existing := Track{ID: "trk_1", MBZTrackID: "recording-aaa"}

	// Incoming without an id keeps the stored one.
	merged := MergeTrack(existing, TrackMetadata{Title: "x"})
	if merged.MBZTrackID != "recording-aaa" {
		t.Errorf("external id cleared: %q", merged.MBZTrackID)
	}

	// Incoming with an id replaces it.
	merged = MergeTrack(existing, TrackMetadata{Title: "x", MBZTrackID: "recording-bbb"})
	if merged.MBZTrackID != "recording-bbb" {
		t.Errorf("external id not replaced: %q", merged.MBZTrackID)
	}
}

func TestMergeTrackClearsMissing(t *testing.T) {
	existing := Track{ID: "trk_1", Missing: true}

	merged := MergeTrack(existing, TrackMetadata{Title: "back"})
	if merged.Missing {
		t.Error("touching a track must clear the missing flag")
	}
}

func TestMergeTrackIdempotent(t *testing.T) {
	now := time.Now().UTC()
	existing := Track{
		ID:          "trk_1",
		Path:        "/music/a.mp3",
		Title:       "Title",
		TrackNumber: 3,
		DurationMS:  1000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	incoming := TrackMetadata{
		Title:       "Title",
		TrackNumber: 3,
		DurationMS:  1000,
	}

	// Same metadata produces an identical struct, which the reconciler
	// relies on to skip the write.
	if merged := MergeTrack(existing, incoming); merged != existing {
		t.Errorf("merge of identical metadata changed the track:\n got %+v\nwant %+v", merged, existing)
	}
}

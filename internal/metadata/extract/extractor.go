// Package extract reads audio file tags into the engine's metadata record.
//
// The extractor is deliberately forgiving: unsupported or damaged files
// produce a single typed error the scanner treats as skip-and-log, and
// partially tagged files produce best-effort partial records.
package extract

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/audiometa"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/normalize"
)

// Audio file extensions the scanner considers for extraction.
//
//nolint:gochecknoglobals // Static extension set.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
}

// IsAudioPath reports whether the path has a supported audio extension.
func IsAudioPath(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extractor reads file tags via audiometa.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract opens the file and maps its tags and audio properties to a
// TrackMetadata record. Failures come back as a single EXTRACTION-coded
// error; partial tag data is returned rather than rejected.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.TrackMetadata, error) {
	f, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, errors.Extraction(path, err)
	}
	defer f.Close()

	for _, w := range f.Warnings {
		e.logger.Debug("tag parse warning", "path", path, "warning", w)
	}

	md := &domain.TrackMetadata{
		Title:      normalize.Sanitize(f.Tags.Title),
		ArtistName: normalize.Sanitize(f.Tags.Artist),
		AlbumTitle: normalize.Sanitize(f.Tags.Album),

		TrackNumber: f.Tags.TrackNumber,
		DiscNumber:  f.Tags.DiscNumber,
		Year:        f.Tags.Year,

		DurationMS: f.Audio.Duration.Milliseconds(),
		Codec:      f.Audio.Codec,
		Bitrate:    f.Audio.Bitrate,
		SampleRate: f.Audio.SampleRate,
		Channels:   f.Audio.Channels,
		Size:       f.Size,

		MBZArtistID:  f.Tags.MusicBrainzArtistID,
		MBZReleaseID: f.Tags.MusicBrainzAlbumID,
		MBZTrackID:   f.Tags.MusicBrainzTrackID,
	}

	if len(f.Tags.Genres) > 0 {
		md.Genre = normalize.Sanitize(f.Tags.Genres[0])
	}

	// Untitled files fall back to their filename so the row stays usable.
	if md.Title == "" {
		base := filepath.Base(path)
		md.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// audiometa only reports size for some formats; stat as a fallback.
	if md.Size == 0 {
		if info, statErr := os.Stat(path); statErr == nil {
			md.Size = info.Size()
		}
	}

	return md, nil
}

package tags

import (
	"context"
	"encoding/binary"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/logger"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	log := logger.New(logger.Config{Level: slog.LevelError, Writer: os.Stderr})
	return NewWriter(log)
}

// writeTestMP3 creates a file with a junk audio payload and no tag;
// the writer must prepend a fresh ID3v2 tag.
func writeTestMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	payload := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 256)...)
	require.NoError(t, os.WriteFile(path, payload, 0o644))
	return path
}

// writeTestFLAC creates a minimal FLAC container: magic plus an empty
// STREAMINFO block and no audio frames.
func writeTestFLAC(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.flac")

	buf := []byte("fLaC")
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, 34)
	header[0] = 0x80 // last block, type STREAMINFO
	buf = append(buf, header...)
	buf = append(buf, make([]byte, 34)...)

	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestWriteMP3RoundTrip(t *testing.T) {
	w := newTestWriter(t)
	path := writeTestMP3(t)

	err := w.Write(context.Background(), path, Update{
		Title:        "Death on Two Legs (Dedicated to...)",
		Artist:       "Queen",
		Album:        "A Night at the Opera",
		Genre:        "Rock",
		Year:         1975,
		TrackNumber:  1,
		MBZTrackID:   "rec-1",
		MBZReleaseID: "rel-1",
		MBZArtistID:  "art-1",
	})
	require.NoError(t, err)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Death on Two Legs (Dedicated to...)", tag.Title())
	assert.Equal(t, "Queen", tag.Artist())
	assert.Equal(t, "A Night at the Opera", tag.Album())
	assert.Equal(t, "Rock", tag.Genre())
	assert.Equal(t, "1975", tag.Year())
	assert.Equal(t, "1",
		tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text)
	assert.Equal(t, "rec-1", userFrameValue(t, tag, "MusicBrainz Track Id"))
	assert.Equal(t, "rel-1", userFrameValue(t, tag, "MusicBrainz Album Id"))
}

func TestWriteMP3ReplacesUserFrame(t *testing.T) {
	w := newTestWriter(t)
	path := writeTestMP3(t)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, path, Update{MBZTrackID: "rec-old"}))
	require.NoError(t, w.Write(ctx, path, Update{MBZTrackID: "rec-new"}))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	frameID := tag.CommonID("User defined text information frame")
	var values []string
	for _, f := range tag.GetFrames(frameID) {
		udt, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udt.Description == "MusicBrainz Track Id" {
			values = append(values, udt.Value)
		}
	}
	assert.Equal(t, []string{"rec-new"}, values)
}

func TestWriteFLACRoundTrip(t *testing.T) {
	w := newTestWriter(t)
	path := writeTestFLAC(t)

	err := w.Write(context.Background(), path, Update{
		Title:      "Bohemian Rhapsody",
		Artist:     "Queen",
		Year:       1975,
		MBZTrackID: "rec-11",
	})
	require.NoError(t, err)

	f, err := flac.ParseFile(path)
	require.NoError(t, err)

	var comment *flacvorbis.MetaDataBlockVorbisComment
	for _, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			comment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			require.NoError(t, err)
		}
	}
	require.NotNil(t, comment, "expected a vorbis comment block")

	titles, err := comment.Get(flacvorbis.FIELD_TITLE)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bohemian Rhapsody"}, titles)

	ids, err := comment.Get("MUSICBRAINZ_TRACKID")
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-11"}, ids)
}

func TestWriteFLACReplacesField(t *testing.T) {
	w := newTestWriter(t)
	path := writeTestFLAC(t)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, path, Update{Title: "Working Title"}))
	require.NoError(t, w.Write(ctx, path, Update{Title: "Bohemian Rhapsody"}))

	f, err := flac.ParseFile(path)
	require.NoError(t, err)
	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		require.NoError(t, err)
		titles, err := comment.Get(flacvorbis.FIELD_TITLE)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bohemian Rhapsody"}, titles)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	w := newTestWriter(t)
	path := filepath.Join(t.TempDir(), "track.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))

	err := w.Write(context.Background(), path, Update{Title: "x"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrTagWrite))
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}

func userFrameValue(t *testing.T, tag *id3v2.Tag, description string) string {
	t.Helper()
	frameID := tag.CommonID("User defined text information frame")
	for _, f := range tag.GetFrames(frameID) {
		udt, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udt.Description == description {
			return udt.Value
		}
	}
	t.Fatalf("no user frame %q", description)
	return ""
}

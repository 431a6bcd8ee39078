// Package tags rewrites file tags so linked catalog metadata survives
// outside the database. Writes are best-effort: a failure is reported
// as a typed error and never blocks linking.
package tags

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/logger"
)

// Update holds the canonical values written back into a file's tags.
// Zero-valued fields leave the existing tag untouched.
type Update struct {
	Title        string
	Artist       string
	Album        string
	Genre        string
	Year         int
	TrackNumber  int
	DiscNumber   int
	MBZTrackID   string
	MBZReleaseID string
	MBZArtistID  string
}

// Writer applies tag updates to audio files in place. MP3 files are
// written through ID3v2 frames, FLAC files through the vorbis comment
// block. Other containers are reported as unsupported.
type Writer struct {
	log *logger.Logger
}

// NewWriter creates a tag writer.
func NewWriter(log *logger.Logger) *Writer {
	return &Writer{log: log}
}

// Write opens the file at path, applies the update, and saves it.
// Returns a TAG_WRITE error on any failure.
func (w *Writer) Write(ctx context.Context, path string, upd Update) error {
	if err := ctx.Err(); err != nil {
		return errors.TagWrite(path, err)
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		err = writeID3(path, upd)
	case ".flac":
		err = writeVorbis(path, upd)
	default:
		err = fmt.Errorf("unsupported format %q", ext)
	}
	if err != nil {
		return errors.TagWrite(path, err)
	}

	w.log.Debug("rewrote file tags",
		"path", path,
		"mbz_track_id", upd.MBZTrackID,
	)
	return nil
}

func writeID3(path string, upd Update) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if upd.Title != "" {
		tag.SetTitle(upd.Title)
	}
	if upd.Artist != "" {
		tag.SetArtist(upd.Artist)
	}
	if upd.Album != "" {
		tag.SetAlbum(upd.Album)
	}
	if upd.Genre != "" {
		tag.SetGenre(upd.Genre)
	}
	if upd.Year > 0 {
		tag.SetYear(strconv.Itoa(upd.Year))
	}
	if upd.TrackNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"),
			tag.DefaultEncoding(), strconv.Itoa(upd.TrackNumber))
	}
	if upd.DiscNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Part of a set"),
			tag.DefaultEncoding(), strconv.Itoa(upd.DiscNumber))
	}

	setUserFrame(tag, "MusicBrainz Track Id", upd.MBZTrackID)
	setUserFrame(tag, "MusicBrainz Album Id", upd.MBZReleaseID)
	setUserFrame(tag, "MusicBrainz Artist Id", upd.MBZArtistID)

	return tag.Save()
}

// setUserFrame replaces the TXXX frame for the description, keeping
// frames with other descriptions intact.
func setUserFrame(tag *id3v2.Tag, description, value string) {
	if value == "" {
		return
	}

	frameID := tag.CommonID("User defined text information frame")
	existing := tag.GetFrames(frameID)
	tag.DeleteFrames(frameID)
	for _, f := range existing {
		udt, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udt.Description == description {
			continue
		}
		tag.AddFrame(frameID, f)
	}

	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}

func writeVorbis(path string, upd Update) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return err
	}

	comment, idx, err := vorbisBlock(f)
	if err != nil {
		return err
	}

	setVorbisField(comment, flacvorbis.FIELD_TITLE, upd.Title)
	setVorbisField(comment, flacvorbis.FIELD_ARTIST, upd.Artist)
	setVorbisField(comment, flacvorbis.FIELD_ALBUM, upd.Album)
	setVorbisField(comment, flacvorbis.FIELD_GENRE, upd.Genre)
	if upd.Year > 0 {
		setVorbisField(comment, flacvorbis.FIELD_DATE, strconv.Itoa(upd.Year))
	}
	if upd.TrackNumber > 0 {
		setVorbisField(comment, flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(upd.TrackNumber))
	}
	if upd.DiscNumber > 0 {
		setVorbisField(comment, "DISCNUMBER", strconv.Itoa(upd.DiscNumber))
	}
	setVorbisField(comment, "MUSICBRAINZ_TRACKID", upd.MBZTrackID)
	setVorbisField(comment, "MUSICBRAINZ_ALBUMID", upd.MBZReleaseID)
	setVorbisField(comment, "MUSICBRAINZ_ARTISTID", upd.MBZArtistID)

	block := comment.Marshal()
	if idx >= 0 {
		f.Meta[idx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	return f.Save(path)
}

// vorbisBlock returns the file's vorbis comment block and its position
// in f.Meta, or a fresh block and -1 when the file carries none.
func vorbisBlock(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, int, error) {
	for idx, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, 0, err
			}
			return comment, idx, nil
		}
	}
	return flacvorbis.New(), -1, nil
}

// setVorbisField replaces every existing value of the field. Empty
// values leave the field untouched.
func setVorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value == "" {
		return
	}

	prefix := strings.ToUpper(field) + "="
	kept := comment.Comments[:0]
	for _, c := range comment.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), prefix) {
			kept = append(kept, c)
		}
	}
	comment.Comments = kept
	comment.Add(field, value)
}

package scanner

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/id"
	"github.com/1899nils/Spherix-sub000/internal/normalize"
	"github.com/1899nils/Spherix-sub000/internal/store"
)

// Fallback names for files with no usable tags. Grouping them beats
// dropping them: the rows stay visible and relinkable.
const (
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

// resolver maps extracted metadata onto artist and album rows.
//
// Resolution precedence is external id, then exact name, then create.
// The external id wins even when the tagged name differs from the stored
// one, so renames in tags never split an identity that is already linked.
type resolver struct {
	store *store.Store
}

// resolveArtist finds or creates the artist a file's tags describe.
func (r *resolver) resolveArtist(ctx context.Context, md *domain.TrackMetadata) (*domain.Artist, error) {
	if md.MBZArtistID != "" {
		artist, err := r.store.GetArtistByMBID(ctx, md.MBZArtistID)
		if err == nil {
			return artist, nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	name := md.ArtistName
	if name == "" {
		name = unknownArtist
	}

	artist, err := r.store.GetArtistByName(ctx, name)
	if err == nil {
		// A scan may supply an external id the row does not have yet.
		// Never clear or replace one that is already set.
		if artist.MBZArtistID == "" && md.MBZArtistID != "" {
			artist.MBZArtistID = md.MBZArtistID
			artist.UpdatedAt = time.Now().UTC()
			if err := r.store.UpdateArtist(ctx, artist); err != nil {
				return nil, err
			}
		}
		return artist, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	artist = &domain.Artist{
		ID:          id.MustGenerate(id.PrefixArtist),
		Name:        name,
		SortName:    normalize.SortName(name),
		MBZArtistID: md.MBZArtistID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.CreateArtist(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}

// resolveAlbum finds or creates the album a file's tags describe, scoped
// to the resolved artist.
func (r *resolver) resolveAlbum(ctx context.Context, artist *domain.Artist, md *domain.TrackMetadata) (*domain.Album, error) {
	if md.MBZReleaseID != "" {
		album, err := r.store.GetAlbumByMBID(ctx, md.MBZReleaseID)
		if err == nil {
			return r.refreshAlbum(ctx, album, md, false)
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	title := md.AlbumTitle
	if title == "" {
		title = unknownAlbum
	}

	album, err := r.store.GetAlbumByArtistAndTitle(ctx, artist.ID, title)
	if err == nil {
		adopted := false
		if album.MBZReleaseID == "" && md.MBZReleaseID != "" {
			album.MBZReleaseID = md.MBZReleaseID
			adopted = true
		}
		return r.refreshAlbum(ctx, album, md, adopted)
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	album = &domain.Album{
		ID:           id.MustGenerate(id.PrefixAlbum),
		Title:        title,
		ArtistID:     artist.ID,
		Year:         md.Year,
		Genre:        md.Genre,
		MBZReleaseID: md.MBZReleaseID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.store.CreateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// refreshAlbum applies scan metadata to album fields. Non-zero incoming
// values win over what the row holds; a file with sparse tags never
// blanks data an earlier file (or the linker) provided.
func (r *resolver) refreshAlbum(ctx context.Context, album *domain.Album, md *domain.TrackMetadata, changed bool) (*domain.Album, error) {

	if md.Year != 0 && album.Year != md.Year {
		album.Year = md.Year
		changed = true
	}
	if md.Genre != "" && album.Genre != md.Genre {
		album.Genre = md.Genre
		changed = true
	}
	if !changed {
		return album, nil
	}

	album.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

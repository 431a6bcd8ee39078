package scanner

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/id"
	"github.com/1899nils/Spherix-sub000/internal/store"
)

// upsertOutcome reports what a track upsert did.
type upsertOutcome struct {
	created  bool
	updated  bool
	restored bool
}

// upsertTrack reconciles one file against the mirror, keyed by path.
// An unchanged file produces no write, which is what makes repeated
// scans of a static tree idempotent.
func upsertTrack(ctx context.Context, s *store.Store, libraryID, path string,
	artist *domain.Artist, album *domain.Album, md *domain.TrackMetadata) (upsertOutcome, error) {

	existing, err := s.GetTrackByPath(ctx, path)
	if err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			return upsertOutcome{}, err
		}

		now := time.Now().UTC()
		track := domain.MergeTrack(domain.Track{
			ID:        id.MustGenerate(id.PrefixTrack),
			Path:      path,
			LibraryID: libraryID,
			CreatedAt: now,
		}, *md)
		track.ArtistID = artist.ID
		track.AlbumID = album.ID
		track.UpdatedAt = now

		if err := s.CreateTrack(ctx, &track); err != nil {
			return upsertOutcome{}, err
		}
		return upsertOutcome{created: true}, nil
	}

	merged := domain.MergeTrack(*existing, *md)
	merged.LibraryID = libraryID // re-adopts rows detached by a library delete
	merged.ArtistID = artist.ID
	merged.AlbumID = album.ID

	if merged == *existing {
		return upsertOutcome{}, nil
	}

	restored := existing.Missing
	merged.UpdatedAt = time.Now().UTC()
	if err := s.UpdateTrack(ctx, &merged); err != nil {
		return upsertOutcome{}, err
	}
	return upsertOutcome{updated: true, restored: restored}, nil
}

// Package linker matches local albums against the MusicBrainz catalog
// and applies high-confidence matches to the mirror.
//
// Linking is conservative: below the auto-link threshold nothing is
// written, a release already claimed by another album blocks the link
// with a reason, and tag rewrites are best-effort. An unlinked album is
// left exactly as the scan built it.
package linker

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/covers"
	"github.com/1899nils/Spherix-sub000/internal/domain"
	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/id"
	"github.com/1899nils/Spherix-sub000/internal/logger"
	"github.com/1899nils/Spherix-sub000/internal/match"
	"github.com/1899nils/Spherix-sub000/internal/metadata/mbz"
	"github.com/1899nils/Spherix-sub000/internal/normalize"
	"github.com/1899nils/Spherix-sub000/internal/store"
	"github.com/1899nils/Spherix-sub000/internal/tags"
)

// Result reports what LinkAlbum decided for one album.
type Result struct {
	AlbumID    string   `json:"album_id"`
	Linked     bool     `json:"linked"`
	Confidence int      `json:"confidence"`
	ExternalID string   `json:"external_id,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`

	// Track reconciliation detail, only set when Linked.
	MatchedTracks   int `json:"matched_tracks,omitempty"`
	UnmatchedLocal  int `json:"unmatched_local,omitempty"`
	UnmatchedRemote int `json:"unmatched_remote,omitempty"`
}

// Linker drives catalog matching for albums.
type Linker struct {
	store      *store.Store
	catalog    *mbz.Client
	downloader *covers.Downloader
	storage    *covers.Storage
	tagWriter  *tags.Writer
	threshold  int
	log        *logger.Logger
}

// Options configures a Linker. TagWriter and cover handling are optional;
// nil disables the corresponding side effect.
type Options struct {
	Store      *store.Store
	Catalog    *mbz.Client
	Downloader *covers.Downloader
	Storage    *covers.Storage
	TagWriter  *tags.Writer
	Threshold  int // minimum confidence (0-100) to auto-link
	Logger     *logger.Logger
}

// New creates a Linker.
func New(opts Options) *Linker {
	return &Linker{
		store:      opts.Store,
		catalog:    opts.Catalog,
		downloader: opts.Downloader,
		storage:    opts.Storage,
		tagWriter:  opts.TagWriter,
		threshold:  opts.Threshold,
		log:        opts.Logger,
	}
}

// LinkAlbum searches the catalog for the album, and if the best candidate
// reaches the threshold, adopts its identity. Below the threshold the
// result carries the observed confidence and the store is untouched.
func (l *Linker) LinkAlbum(ctx context.Context, albumID string) (*Result, error) {
	album, err := l.store.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album.Linked() {
		return &Result{
			AlbumID:    album.ID,
			ExternalID: album.MBZReleaseID,
			Reasons:    []string{"album already linked"},
		}, nil
	}

	artist, err := l.store.GetArtist(ctx, album.ArtistID)
	if err != nil {
		return nil, err
	}

	localTracks, err := l.store.ListTracksByAlbum(ctx, album.ID)
	if err != nil {
		return nil, err
	}

	releases, err := l.catalog.SearchReleases(ctx, album.Title, artist.Name)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return &Result{
			AlbumID: album.ID,
			Reasons: []string{"no catalog candidates"},
		}, nil
	}

	local := match.Descriptor{
		Title:      album.Title,
		ArtistName: artist.Name,
		Year:       album.Year,
		TrackCount: len(localTracks),
	}
	candidates := make([]match.Candidate, len(releases))
	for i, r := range releases {
		candidates[i] = match.Candidate{
			ExternalID:   r.ID,
			Title:        r.Title,
			ArtistCredit: r.CreditedArtist(),
			Year:         r.Year(),
			TrackCount:   r.TotalTracks(),
		}
	}

	ranked := match.Rank(candidates, local)
	best := ranked[0]

	result := &Result{
		AlbumID:    album.ID,
		Confidence: best.Confidence,
		ExternalID: best.Candidate.ExternalID,
		Reasons:    best.Reasons,
	}

	if best.Confidence < l.threshold {
		l.log.Info("best candidate below auto-link threshold",
			"album_id", album.ID,
			"confidence", best.Confidence,
			"threshold", l.threshold,
			"release", best.Candidate.ExternalID,
		)
		return result, nil
	}

	// A release linked to another album is a hard stop. Applying it
	// here would silently merge two local albums.
	claimed, err := l.store.GetAlbumByMBID(ctx, best.Candidate.ExternalID)
	if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	if claimed != nil && claimed.ID != album.ID {
		l.log.Warn("release already claimed by another album",
			"album_id", album.ID,
			"release", best.Candidate.ExternalID,
			"claimed_by", claimed.ID,
		)
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("release %s already linked to album %s",
				best.Candidate.ExternalID, claimed.ID))
		return result, nil
	}

	release, err := l.catalog.GetRelease(ctx, best.Candidate.ExternalID)
	if err != nil {
		return nil, err
	}

	linkedArtist, err := l.resolveCreditedArtist(ctx, artist, release)
	if err != nil {
		return nil, err
	}

	// Album row is written first so the identity is durable even if a
	// later per-track write fails.
	l.applyRelease(album, release, linkedArtist)
	l.attachCover(ctx, album, release.ID)
	if err := l.store.UpdateAlbum(ctx, album); err != nil {
		return nil, err
	}

	matched, unmatchedRemote, err := l.linkTracks(ctx, album, linkedArtist, release, localTracks)
	if err != nil {
		return nil, err
	}

	result.Linked = true
	result.MatchedTracks = matched
	result.UnmatchedLocal = len(localTracks) - matched
	result.UnmatchedRemote = unmatchedRemote

	l.log.Info("album linked",
		"album_id", album.ID,
		"release", release.ID,
		"confidence", best.Confidence,
		"matched_tracks", matched,
		"unmatched_remote", unmatchedRemote,
	)
	return result, nil
}

// resolveCreditedArtist maps the release's primary credit onto an artist
// row, external id first. When the local artist has no external id it
// adopts the credit; when it carries a different one the credit gets its
// own row so two catalog identities never share a local artist.
func (l *Linker) resolveCreditedArtist(ctx context.Context, local *domain.Artist, release *mbz.Release) (*domain.Artist, error) {
	credit := release.PrimaryArtist()
	if credit == nil || credit.ID == "" {
		return local, nil
	}

	existing, err := l.store.GetArtistByMBID(ctx, credit.ID)
	if err == nil {
		return existing, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if local.MBZArtistID == "" || local.MBZArtistID == credit.ID {
		local.MBZArtistID = credit.ID
		if credit.SortName != "" {
			local.SortName = credit.SortName
		}
		local.UpdatedAt = time.Now().UTC()
		if err := l.store.UpdateArtist(ctx, local); err != nil {
			return nil, err
		}
		return local, nil
	}

	now := time.Now().UTC()
	created := &domain.Artist{
		ID:          id.MustGenerate(id.PrefixArtist),
		Name:        credit.Name,
		SortName:    credit.SortName,
		MBZArtistID: credit.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.SortName == "" {
		created.SortName = normalize.SortName(created.Name)
	}
	if err := l.store.CreateArtist(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// applyRelease copies catalog fields onto the album row.
func (l *Linker) applyRelease(album *domain.Album, release *mbz.Release, artist *domain.Artist) {
	album.MBZReleaseID = release.ID
	album.Title = release.Title
	album.ArtistID = artist.ID
	album.Country = release.Country
	album.DiscCount = len(release.Media)
	album.TrackCount = release.TotalTracks()
	album.UpdatedAt = time.Now().UTC()

	if y := release.Year(); y > 0 {
		album.Year = y
	}
	if tag := release.TopTag(); tag != "" {
		album.Genre = tag
	}
	if label := release.Label(); label != "" {
		album.Label = label
	}
}

// attachCover fetches and stores front cover art. Failures are logged
// and ignored; linking never depends on artwork.
func (l *Linker) attachCover(ctx context.Context, album *domain.Album, releaseID string) {
	if l.downloader == nil || l.storage == nil {
		return
	}

	url, err := l.catalog.CoverURL(ctx, releaseID)
	if err != nil {
		l.log.Warn("cover lookup failed", "album_id", album.ID, "error", err)
		return
	}
	if url == "" {
		return
	}

	res := l.downloader.Download(ctx, album.ID, url)
	if !res.Success {
		l.log.Warn("cover download failed", "album_id", album.ID, "error", res.Error)
		return
	}

	album.CoverPath = l.storage.Path(album.ID)
	album.CoverBlurHash = res.BlurHash
}

// linkTracks adopts catalog identity on local tracks: recording id,
// canonical title, and the credited artist row. Matching is
// by (disc, track) position, falling back to track position alone when
// the local rows carry no usable disc numbers. Catalog tracks with no
// local counterpart are counted and skipped; rows are never created
// for files that do not exist.
func (l *Linker) linkTracks(ctx context.Context, album *domain.Album, artist *domain.Artist,
	release *mbz.Release, localTracks []*domain.Track) (matched, unmatchedRemote int, err error) {

	discless := true
	for _, t := range localTracks {
		if t.DiscNumber > 1 {
			discless = false
			break
		}
	}

	type posKey struct{ disc, track int }
	catalog := make(map[posKey]*mbz.MediumTrack)
	total := 0
	for mi := range release.Media {
		medium := &release.Media[mi]
		for ti := range medium.Tracks {
			mt := &medium.Tracks[ti]
			total++
			key := posKey{disc: medium.Position, track: mt.Position}
			if discless {
				key.disc = 0
				if _, dup := catalog[key]; dup {
					continue // first disc wins when positions repeat
				}
			}
			catalog[key] = mt
		}
	}

	claimed := make(map[string]bool)
	for _, t := range localTracks {
		key := posKey{disc: t.DiscNumber, track: t.TrackNumber}
		if discless {
			key.disc = 0
		}

		mt, ok := catalog[key]
		if !ok {
			continue
		}

		recordingID := mt.Recording.ID
		if recordingID == "" || claimed[recordingID] {
			continue
		}
		if taken, err := l.recordingClaimed(ctx, recordingID, t.ID); err != nil {
			return matched, 0, err
		} else if taken {
			continue
		}
		claimed[recordingID] = true

		changed := false
		if t.MBZTrackID != recordingID {
			t.MBZTrackID = recordingID
			changed = true
		}
		if mt.Title != "" && t.Title != mt.Title {
			t.Title = mt.Title
			changed = true
		}
		if t.ArtistID != artist.ID {
			t.ArtistID = artist.ID
			changed = true
		}
		if changed {
			t.UpdatedAt = time.Now().UTC()
			if err := l.store.UpdateTrack(ctx, t); err != nil {
				return matched, 0, err
			}
		}
		matched++

		l.rewriteTags(ctx, t, mt, album, artist)
	}

	return matched, total - matched, nil
}

// recordingClaimed reports whether another track row already owns the
// recording id.
func (l *Linker) recordingClaimed(ctx context.Context, recordingID, trackID string) (bool, error) {
	existing, err := l.store.GetTrackByMBID(ctx, recordingID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != trackID, nil
}

// rewriteTags pushes canonical metadata back into the file. Best-effort:
// a read-only file costs a warning, not the link.
func (l *Linker) rewriteTags(ctx context.Context, t *domain.Track, mt *mbz.MediumTrack,
	album *domain.Album, artist *domain.Artist) {

	if l.tagWriter == nil {
		return
	}

	err := l.tagWriter.Write(ctx, t.Path, tags.Update{
		Title:        mt.Title,
		Artist:       artist.Name,
		Album:        album.Title,
		Genre:        album.Genre,
		Year:         album.Year,
		TrackNumber:  mt.Position,
		MBZTrackID:   mt.Recording.ID,
		MBZReleaseID: album.MBZReleaseID,
		MBZArtistID:  artist.MBZArtistID,
	})
	if err != nil {
		l.log.Warn("tag rewrite failed", "path", t.Path, "error", err)
	}
}

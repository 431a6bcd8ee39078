package mbz

import "strconv"

// ArtistCredit is one credited artist on a release or track.
type ArtistCredit struct {
	Name       string       `json:"name"`
	JoinPhrase string       `json:"joinphrase"`
	Artist     CreditArtist `json:"artist"`
}

// CreditArtist is the artist entity inside an artist credit.
type CreditArtist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
}

// creditedName flattens an artist-credit list into the display string,
// honoring join phrases ("A feat. B").
func creditedName(credits []ArtistCredit) string {
	var s string
	for _, c := range credits {
		s += c.Name + c.JoinPhrase
	}
	return s
}

// LabelInfo carries a release's label and catalog number.
type LabelInfo struct {
	CatalogNumber string `json:"catalog-number"`
	Label         struct {
		Name string `json:"name"`
	} `json:"label"`
}

// Tag is a community genre/style tag with a popularity count.
type Tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// MediumTrack is one track on a release medium.
type MediumTrack struct {
	ID           string         `json:"id"`
	Position     int            `json:"position"`
	Title        string         `json:"title"`
	LengthMS     int64          `json:"length"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Recording    struct {
		ID string `json:"id"`
	} `json:"recording"`
}

// Medium is one disc of a release.
type Medium struct {
	Position   int           `json:"position"`
	Format     string        `json:"format"`
	TrackCount int           `json:"track-count"`
	Tracks     []MediumTrack `json:"tracks"`
}

// Release is a MusicBrainz release, populated to different depths by
// search (shallow) and lookup (full media and tags).
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Country      string         `json:"country"`
	TrackCount   int            `json:"track-count"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	LabelInfo    []LabelInfo    `json:"label-info"`
	Media        []Medium       `json:"media"`
	Tags         []Tag          `json:"tags"`
}

// CreditedArtist returns the flattened artist-credit display name.
func (r *Release) CreditedArtist() string {
	return creditedName(r.ArtistCredit)
}

// PrimaryArtist returns the first credited artist entity, if any.
func (r *Release) PrimaryArtist() *CreditArtist {
	if len(r.ArtistCredit) == 0 {
		return nil
	}
	return &r.ArtistCredit[0].Artist
}

// Year parses the release year from the date string ("1969-09-26" or
// "1969"). Returns 0 when unknown.
func (r *Release) Year() int {
	if len(r.Date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(r.Date[:4])
	if err != nil {
		return 0
	}
	return year
}

// TotalTracks returns the release track count, summing media when the
// search-level track-count field is absent. Returns 0 when unknown.
func (r *Release) TotalTracks() int {
	if r.TrackCount > 0 {
		return r.TrackCount
	}
	total := 0
	for _, m := range r.Media {
		total += m.TrackCount
		if m.TrackCount == 0 {
			total += len(m.Tracks)
		}
	}
	return total
}

// Label returns the first label name, if any.
func (r *Release) Label() string {
	if len(r.LabelInfo) == 0 {
		return ""
	}
	return r.LabelInfo[0].Label.Name
}

// TopTag returns the most popular tag name, preferring higher counts and
// keeping catalog order on ties. Empty when the release has no tags.
func (r *Release) TopTag() string {
	best := ""
	bestCount := -1
	for _, t := range r.Tags {
		if t.Count > bestCount {
			best = t.Name
			bestCount = t.Count
		}
	}
	return best
}

// searchResponse is the raw release-search response envelope.
type searchResponse struct {
	Count    int       `json:"count"`
	Releases []Release `json:"releases"`
}

// coverResponse is the Cover Art Archive index document.
type coverResponse struct {
	Images []coverImage `json:"images"`
}

type coverImage struct {
	Front bool   `json:"front"`
	Image string `json:"image"`
}

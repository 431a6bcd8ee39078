// Package match scores catalog release candidates against local albums.
//
// Scoring is pure and deterministic: the same candidate and descriptor
// always produce the same confidence, so threshold decisions are
// reproducible across runs.
package match

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"github.com/1899nils/Spherix-sub000/internal/normalize"
)

// Sub-score weights. Weights of unavailable inputs are excluded from both
// numerator and denominator so confidence stays on the 0-100 scale.
const (
	weightTitle  = 40
	weightArtist = 35
	weightYear   = 15
	weightTracks = 10
)

// Candidate is a catalog release as seen by the scorer.
type Candidate struct {
	ExternalID   string
	Title        string
	ArtistCredit string
	Year         int // 0 = unknown
	TrackCount   int // 0 = unknown
}

// Descriptor is the local album as seen by the scorer.
type Descriptor struct {
	Title      string
	ArtistName string
	Year       int // 0 = unknown
	TrackCount int // 0 = unknown
}

// Result is a scored candidate.
type Result struct {
	Candidate  Candidate
	Confidence int // 0-100
	Reasons    []string
}

// Score computes the weighted confidence that the candidate identifies
// the local album.
func Score(candidate Candidate, local Descriptor) Result {
	var (
		sum     float64
		weights float64
		reasons []string
	)

	titleSim := similarity(candidate.Title, local.Title)
	sum += float64(weightTitle) * titleSim
	weights += weightTitle
	reasons = append(reasons, fmt.Sprintf("title similarity %d%%", toPercent(titleSim)))

	if candidate.ArtistCredit != "" && local.ArtistName != "" {
		artistSim := similarity(candidate.ArtistCredit, local.ArtistName)
		sum += float64(weightArtist) * artistSim
		weights += weightArtist
		reasons = append(reasons, fmt.Sprintf("artist similarity %d%%", toPercent(artistSim)))
	}

	if candidate.Year > 0 && local.Year > 0 {
		yearScore := closeness(candidate.Year, local.Year, 1)
		sum += float64(weightYear) * yearScore
		weights += weightYear
		reasons = append(reasons, fmt.Sprintf("year %d vs %d", candidate.Year, local.Year))
	}

	if candidate.TrackCount > 0 && local.TrackCount > 0 {
		trackScore := closeness(candidate.TrackCount, local.TrackCount, 2)
		sum += float64(weightTracks) * trackScore
		weights += weightTracks
		reasons = append(reasons, fmt.Sprintf("track count %d vs %d", candidate.TrackCount, local.TrackCount))
	}

	confidence := 0
	if weights > 0 {
		confidence = int(math.Round(100 * sum / weights))
	}

	return Result{
		Candidate:  candidate,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

// similarity returns 1 - levenshtein/maxlen over normalized strings,
// in [0, 1]. Identical normalized strings score 1 regardless of the raw
// spelling.
func similarity(a, b string) float64 {
	na := normalize.Key(a)
	nb := normalize.Key(b)

	if na == nb {
		return 1
	}

	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if maxLen == 0 {
		return 0
	}

	dist := edlib.LevenshteinDistance(na, nb)
	return 1 - float64(dist)/float64(maxLen)
}

// closeness gives full credit on an exact match and half credit within
// the window, nothing beyond it.
func closeness(a, b, window int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1
	case diff <= window:
		return 0.5
	default:
		return 0
	}
}

func toPercent(v float64) int {
	return int(math.Round(v * 100))
}

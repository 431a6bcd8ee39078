package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// Filters
	Genre          string // Exact genre filter
	MinYear        int
	MaxYear        int
	ExcludeMissing bool // Drop tracks whose files are flagged missing

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "artist", "recent", "year"
	SortOrder string // "asc", "desc"

	Highlight bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Artist     string            `json:"artist,omitempty"`
	Album      string            `json:"album,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	Year       int               `json:"year,omitempty"`
	Missing    bool              `json:"missing,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("artist")
		searchRequest.Highlight.AddField("album")
	}

	searchRequest.Fields = []string{
		"id", "type", "name", "artist", "album", "genre", "year", "missing",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			h.Name = n
		}
		if a, ok := hit.Fields["artist"].(string); ok {
			h.Artist = a
		}
		if al, ok := hit.Fields["album"].(string); ok {
			h.Album = al
		}
		if g, ok := hit.Fields["genre"].(string); ok {
			h.Genre = g
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(y)
		}
		if m, ok := hit.Fields["missing"].(bool); ok {
			h.Missing = m
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query matches the document's own name plus the
	// denormalized artist/album context, with the name boosted so a
	// track titled "Help!" outranks every track on the album "Help!".
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		artistMatch := bleve.NewMatchQuery(params.Query)
		artistMatch.SetField("artist")
		artistMatch.SetBoost(1.5)
		textQueries = append(textQueries, artistMatch)

		albumMatch := bleve.NewMatchQuery(params.Query)
		albumMatch.SetField("album")
		albumMatch.SetBoost(1.5)
		textQueries = append(textQueries, albumMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Type filter
	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	// Genre filter (exact match)
	if params.Genre != "" {
		gq := bleve.NewTermQuery(params.Genre)
		gq.SetField("genre")
		queries = append(queries, gq)
	}

	// Year range filter
	if params.MinYear > 0 || params.MaxYear > 0 {
		min := float64(params.MinYear)
		max := float64(params.MaxYear)
		if params.MaxYear == 0 {
			max = 3000 // Far future
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("year")
		queries = append(queries, rangeQuery)
	}

	// Missing filter: exclude documents with missing=true
	if params.ExcludeMissing {
		mq := bleve.NewBoolFieldQuery(true)
		mq.SetField("missing")

		not := bleve.NewBooleanQuery()
		not.AddMustNot(mq)
		if len(queries) > 0 {
			not.AddMust(queries...)
			return not
		}
		not.AddMust(bleve.NewMatchAllQuery())
		return not
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "artist":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-artist", "-name"})
		} else {
			req.SortBy([]string{"artist", "name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "year":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"year"})
		} else {
			req.SortBy([]string{"-year"})
		}
	default:
		// Relevance (score) is the default
		req.SortBy([]string{"-_score"})
	}
}

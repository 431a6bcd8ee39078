package mbz

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/1899nils/Spherix-sub000/internal/errors"
)

const searchLimit = 10

// SearchReleases queries MusicBrainz for releases matching the album
// title and artist name. Results come back in the catalog's own relevance
// order, which downstream ranking preserves on score ties.
func (c *Client) SearchReleases(ctx context.Context, title, artist string) ([]Release, error) {
	query := fmt.Sprintf(`release:%s`, luceneEscape(title))
	if artist != "" {
		query += fmt.Sprintf(` AND artist:%s`, luceneEscape(artist))
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	params.Set("fmt", "json")

	searchURL := c.baseURL + "/release?" + params.Encode()

	c.logger.Debug("searching catalog", "title", title, "artist", artist)

	resp, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "release search")
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, errors.Catalog("parse search response", err)
	}

	c.logger.Debug("catalog search results",
		"title", title,
		"count", len(searchResp.Releases),
	)

	return searchResp.Releases, nil
}

// luceneEscape quotes a search term for the MusicBrainz Lucene syntax.
func luceneEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

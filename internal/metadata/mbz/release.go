package mbz

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/url"

	"github.com/1899nils/Spherix-sub000/internal/errors"
)

// GetRelease fetches the full release: media with per-track recordings
// and artist credits, labels, and community tags.
func (c *Client) GetRelease(ctx context.Context, mbid string) (*Release, error) {
	params := url.Values{}
	params.Set("inc", "recordings+artist-credits+labels+tags+media")
	params.Set("fmt", "json")

	lookupURL := c.baseURL + "/release/" + url.PathEscape(mbid) + "?" + params.Encode()

	resp, err := c.get(ctx, lookupURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFoundf("release %s", mbid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "release lookup")
	}

	var release Release
	if err := json.UnmarshalRead(resp.Body, &release); err != nil {
		return nil, errors.Catalog("parse release", err)
	}

	return &release, nil
}

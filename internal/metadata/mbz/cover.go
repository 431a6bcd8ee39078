package mbz

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/url"

	"github.com/1899nils/Spherix-sub000/internal/errors"
)

// CoverURL resolves the front cover image URL for a release via the
// Cover Art Archive. Returns "" (no error) when the release has no cover.
func (c *Client) CoverURL(ctx context.Context, mbid string) (string, error) {
	coverURL := c.coverBaseURL + "/release/" + url.PathEscape(mbid)

	resp, err := c.get(ctx, coverURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// The archive answers 404 for releases without any artwork.
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, "cover lookup")
	}

	var index coverResponse
	if err := json.UnmarshalRead(resp.Body, &index); err != nil {
		return "", errors.Catalog("parse cover index", err)
	}

	for _, img := range index.Images {
		if img.Front {
			return img.Image, nil
		}
	}
	if len(index.Images) > 0 {
		return index.Images[0].Image, nil
	}
	return "", nil
}

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"encoding/json/v2"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

// searchLimit is the fixed result cap for title searches.
const searchLimit = 10

// SearchByTitle searches the catalog by title or author name and returns
// normalized records in result order. Zero results yield a NotFound error,
// transport or server failures an Unavailable error - never a partial list.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]domain.BookRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	searchURL := c.baseURL + "/search.json?" + params.Encode()

	c.logger.Debug("searching catalog",
		"title", title,
		"url", searchURL,
	)

	var resp searchResponse
	err := c.attempt(ctx, func(ctx context.Context) error {
		// fresh struct per attempt so a half-decoded failure cannot
		// leak fields into a later retry
		resp = searchResponse{}
		return c.getJSON(ctx, searchURL, &resp)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("catalog search results",
		"title", title,
		"count", len(resp.Docs),
	)

	if len(resp.Docs) == 0 {
		return nil, domainerrors.NotFoundf("no books found for %q", title)
	}

	return normalizeSearchDocs(resp.Docs), nil
}

// getJSON performs a GET and decodes the body, mapping failures to the
// Unavailable taxonomy so callers see one categorized outcome.
func (c *Client) getJSON(ctx context.Context, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "catalog unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domainerrors.Unavailablef("catalog returned status %d", resp.StatusCode)
	}

	if err := json.UnmarshalRead(resp.Body, dest); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "parse catalog response")
	}
	return nil
}

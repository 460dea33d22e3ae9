package wiki

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wikidash/wikidash/internal/model"
)

// CanonicalTitle resolves redirects and normalization for title. On a
// missing page it returns ErrNotFound.
func (c *Client) CanonicalTitle(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("titles", title)
	params.Set("redirects", "1")

	page, err := c.singlePage(ctx, params)
	if err != nil {
		return title, err
	}
	if page.Title == "" {
		return title, nil
	}
	return page.Title, nil
}

// Summary returns the plain-text lead section and canonical URL.
func (c *Client) Summary(ctx context.Context, title string) (*model.ArticleSummary, error) {
	params := url.Values{}
	params.Set("prop", "extracts|info")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")
	params.Set("titles", title)
	params.Set("redirects", "1")

	page, err := c.singlePage(ctx, params)
	if err != nil {
		return nil, err
	}
	return &model.ArticleSummary{
		Title:   page.Title,
		Summary: page.Extract,
		URL:     page.FullURL,
	}, nil
}

// CreatedAt returns the timestamp of the article's first revision.
func (c *Client) CreatedAt(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("rvprop", "timestamp")
	params.Set("rvlimit", "1")
	params.Set("rvdir", "newer")
	params.Set("titles", title)
	params.Set("redirects", "1")

	page, err := c.singlePage(ctx, params)
	if err != nil {
		return "", err
	}
	if len(page.Revisions) == 0 {
		return "", fmt.Errorf("%w: no revisions for %q", ErrNotFound, title)
	}
	return page.Revisions[0].Timestamp, nil
}

// Content returns the wikitext of the article's latest revision.
func (c *Client) Content(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("rvprop", PropContent)
	params.Set("rvslots", "main")
	params.Set("titles", title)
	params.Set("redirects", "1")

	page, err := c.singlePage(ctx, params)
	if err != nil {
		return "", err
	}
	if len(page.Revisions) == 0 || page.Revisions[0].Slots == nil {
		return "", fmt.Errorf("%w: no revisions found for %q", ErrNotFound, title)
	}
	return page.Revisions[0].Slots.Main.Content, nil
}

func (c *Client) singlePage(ctx context.Context, params url.Values) (*wirePage, error) {
	body, err := c.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	q, err := decodeQuery(body)
	if err != nil {
		return nil, err
	}
	return firstPage(q)
}

package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/wikidash/wikidash/internal/model"
)

// Revision property sets requested by the aggregators.
const (
	PropIDs       = "ids"
	PropTimestamp = "timestamp"
	PropUser      = "user"
	PropComment   = "comment"
	PropSize      = "size"
	PropContent   = "content"
)

// maxRevisionsPerPage is the API maximum for non-content revision queries.
const maxRevisionsPerPage = "500"

// Revisions returns the article's revision history, newest first, following
// continuation up to the client's page cap.
func (c *Client) Revisions(ctx context.Context, title string, props ...string) PartialResult[model.Revision] {
	if len(props) == 0 {
		props = []string{PropIDs, PropTimestamp, PropUser, PropComment, PropSize}
	}

	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("titles", title)
	params.Set("redirects", "1")
	params.Set("rvprop", strings.Join(props, "|"))
	params.Set("rvlimit", maxRevisionsPerPage)
	params.Set("rvdir", "older")

	return paginate(ctx, c, params, extractRevisions)
}

func extractRevisions(body json.RawMessage) ([]model.Revision, error) {
	q, err := decodeQuery(body)
	if err != nil {
		return nil, err
	}
	page, err := firstPage(q)
	if err != nil {
		return nil, err
	}

	revs := make([]model.Revision, 0, len(page.Revisions))
	for _, r := range page.Revisions {
		revs = append(revs, model.Revision{
			ID:        r.RevID,
			ParentID:  r.ParentID,
			Timestamp: r.Timestamp,
			User:      r.User,
			Comment:   r.Comment,
			Size:      r.Size,
		})
	}
	return revs, nil
}

// firstPage returns the single page of a titles= query.
func firstPage(q *queryBody) (*wirePage, error) {
	if len(q.Pages) == 0 {
		return nil, fmt.Errorf("%w: response has no pages", ErrMalformed)
	}
	page := &q.Pages[0]
	if page.Missing || page.Invalid {
		return nil, fmt.Errorf("%w: page %q", ErrNotFound, page.Title)
	}
	return page, nil
}

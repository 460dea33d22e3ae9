package wiki

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/wikidash/wikidash/internal/model"
)

// Contributions returns a user's edits across all articles, newest first.
func (c *Client) Contributions(ctx context.Context, username string) PartialResult[model.UserEdit] {
	params := url.Values{}
	params.Set("list", "usercontribs")
	params.Set("ucuser", username)
	params.Set("uclimit", maxRevisionsPerPage)
	params.Set("ucprop", "ids|title|timestamp|comment|size")

	return paginate(ctx, c, params, extractUserEdits)
}

// ArticleContributions returns a user's edits restricted to one article.
func (c *Client) ArticleContributions(ctx context.Context, username, title string) PartialResult[model.Revision] {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("titles", title)
	params.Set("redirects", "1")
	params.Set("rvuser", username)
	params.Set("rvprop", "ids|timestamp|user|comment|size")
	params.Set("rvlimit", maxRevisionsPerPage)

	return paginate(ctx, c, params, extractRevisions)
}

func extractUserEdits(body json.RawMessage) ([]model.UserEdit, error) {
	q, err := decodeQuery(body)
	if err != nil {
		return nil, err
	}

	edits := make([]model.UserEdit, 0, len(q.UserContribs))
	for _, e := range q.UserContribs {
		edits = append(edits, model.UserEdit{
			RevID:     e.RevID,
			Title:     e.Title,
			Timestamp: e.Timestamp,
			Comment:   e.Comment,
			Size:      e.Size,
		})
	}
	return edits, nil
}

package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wikidash/wikidash/internal/model"
)

// pageviewsDayLayout is the date format of the pageviews REST path.
const pageviewsDayLayout = "20060102"

// Pageviews returns daily views of title between start and end inclusive.
// The title must already be canonical. A 404 means the API has no data for
// the range and yields an empty result.
func (c *Client) Pageviews(ctx context.Context, title string, start, end time.Time) ([]model.PageView, error) {
	article := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	endpoint := fmt.Sprintf("%s/%s/all-access/all-agents/%s/daily/%s/%s",
		c.pageviewsURL,
		c.project,
		article,
		start.UTC().Format(pageviewsDayLayout),
		end.UTC().Format(pageviewsDayLayout),
	)

	body, err := c.Fetch(ctx, endpoint, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.PageView{}, nil
		}
		return nil, err
	}

	var resp wirePageviews
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	views := make([]model.PageView, 0, len(resp.Items))
	for _, item := range resp.Items {
		// Timestamps look like 2024020100.
		if len(item.Timestamp) < 8 {
			continue
		}
		ts := item.Timestamp
		views = append(views, model.PageView{
			Date:  ts[:4] + "-" + ts[4:6] + "-" + ts[6:8],
			Views: item.Views,
		})
	}
	return views, nil
}

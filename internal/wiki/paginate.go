package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/wikidash/wikidash/internal/metrics"
)

// PartialResult is the outcome of a pagination loop. Items holds every record
// collected before the loop stopped, even when Err is set.
type PartialResult[T any] struct {
	Items []T
	Pages int
	// Complete is true when upstream reported no further continuation.
	Complete bool
	// Capped is true when the loop stopped at the page cap.
	Capped bool
	// Err is the failure that truncated the loop, if any.
	Err error
}

// PageFunc fetches one page of results for params.
type PageFunc func(ctx context.Context, params url.Values) (json.RawMessage, error)

// Extractor pulls the records out of one page body.
type Extractor[T any] func(body json.RawMessage) ([]T, error)

// continuation is the MediaWiki "continue" object.
type continuation struct {
	Continue map[string]json.RawMessage `json:"continue"`
}

// Paginate follows the MediaWiki continuation convention: every key of a
// response's "continue" object is merged into the next request. It stops
// when no continuation is returned, when a fetch or extract fails (partial
// items are kept), or after maxPages pages.
func Paginate[T any](ctx context.Context, fetch PageFunc, params url.Values, extract Extractor[T], maxPages int) PartialResult[T] {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}

	var result PartialResult[T]
	for result.Pages < maxPages {
		body, err := fetch(ctx, q)
		if err != nil {
			result.Err = err
			return result
		}

		items, err := extract(body)
		if err != nil {
			result.Err = err
			return result
		}
		result.Items = append(result.Items, items...)
		result.Pages++

		var next continuation
		if err := json.Unmarshal(body, &next); err != nil {
			result.Err = &FetchError{Kind: KindDecode, Message: err.Error(), Err: err}
			return result
		}
		if len(next.Continue) == 0 {
			result.Complete = true
			return result
		}
		for k, raw := range next.Continue {
			q.Set(k, continueValue(raw))
		}
	}

	result.Capped = true
	return result
}

// continueValue renders a continuation value as a query parameter. Values are
// normally strings; anything else is passed through as its JSON text.
func continueValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// paginate runs Paginate against the action API and records how it ended.
func paginate[T any](ctx context.Context, c *Client, params url.Values, extract Extractor[T]) PartialResult[T] {
	result := Paginate(ctx, c.Query, params, extract, c.maxPages)

	switch {
	case result.Err != nil:
		c.metrics.IncPaginationStopped(metrics.StopError)
		c.logger.Warn("pagination truncated by upstream failure",
			slog.Int("pages", result.Pages),
			slog.Int("items", len(result.Items)),
			slog.String("error", result.Err.Error()),
		)
	case result.Capped:
		c.metrics.IncPaginationStopped(metrics.StopCapped)
		c.logger.Debug("pagination stopped at page cap",
			slog.Int("pages", result.Pages),
			slog.Int("items", len(result.Items)),
		)
	default:
		c.metrics.IncPaginationStopped(metrics.StopComplete)
	}

	return result
}

// decodeQuery unmarshals a query response and rejects bodies without a
// "query" object.
func decodeQuery(body json.RawMessage) (*queryBody, error) {
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Query == nil {
		return nil, fmt.Errorf("%w: response has no query object", ErrMalformed)
	}
	return resp.Query, nil
}

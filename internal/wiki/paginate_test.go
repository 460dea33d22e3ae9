package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

type intPage struct {
	Items    []int             `json:"items"`
	Continue map[string]string `json:"continue,omitempty"`
}

func extractInts(body json.RawMessage) ([]int, error) {
	var p intPage
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// pagesFunc serves pages keyed by the "offset" continuation parameter.
func pagesFunc(t *testing.T, pages map[string]intPage, failAt string) (PageFunc, *[]url.Values) {
	t.Helper()
	var seen []url.Values
	return func(ctx context.Context, params url.Values) (json.RawMessage, error) {
		seen = append(seen, params)
		offset := params.Get("offset")
		if offset == failAt {
			return nil, &FetchError{Kind: KindNetwork, Message: "boom"}
		}
		p, ok := pages[offset]
		if !ok {
			return nil, fmt.Errorf("unexpected offset %q", offset)
		}
		return json.Marshal(p)
	}, &seen
}

func TestPaginate_FollowsContinuation(t *testing.T) {
	t.Parallel()

	fetch, seen := pagesFunc(t, map[string]intPage{
		"":  {Items: []int{1, 2}, Continue: map[string]string{"offset": "a", "continue": "-||"}},
		"a": {Items: []int{3}, Continue: map[string]string{"offset": "b", "continue": "-||"}},
		"b": {Items: []int{4, 5}},
	}, "never")

	result := Paginate(context.Background(), fetch, url.Values{"list": {"x"}}, extractInts, 10)

	if !result.Complete || result.Capped || result.Err != nil {
		t.Fatalf("expected complete result, got %+v", result)
	}
	if result.Pages != 3 {
		t.Errorf("pages = %d, want 3", result.Pages)
	}
	want := []int{1, 2, 3, 4, 5}
	if fmt.Sprint(result.Items) != fmt.Sprint(want) {
		t.Errorf("items = %v, want %v", result.Items, want)
	}

	// Every continue key is merged and the base params are preserved.
	last := (*seen)[2]
	if last.Get("continue") != "-||" || last.Get("list") != "x" {
		t.Errorf("continuation params not merged: %v", last)
	}
}

func TestPaginate_KeepsPartialResultsOnFailure(t *testing.T) {
	t.Parallel()

	fetch, _ := pagesFunc(t, map[string]intPage{
		"":  {Items: []int{1, 2}, Continue: map[string]string{"offset": "a"}},
		"a": {Items: []int{3}, Continue: map[string]string{"offset": "b"}},
	}, "b")

	result := Paginate(context.Background(), fetch, url.Values{}, extractInts, 10)

	if result.Complete {
		t.Error("expected incomplete result")
	}
	if !errors.Is(result.Err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", result.Err)
	}
	if len(result.Items) != 3 || result.Pages != 2 {
		t.Errorf("expected 3 items over 2 pages, got %d items over %d pages", len(result.Items), result.Pages)
	}
}

func TestPaginate_StopsAtCap(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, params url.Values) (json.RawMessage, error) {
		calls++
		return json.Marshal(intPage{
			Items:    []int{calls},
			Continue: map[string]string{"offset": fmt.Sprint(calls)},
		})
	}

	result := Paginate(context.Background(), fetch, url.Values{}, extractInts, 3)

	if !result.Capped || result.Complete {
		t.Fatalf("expected capped result, got %+v", result)
	}
	if calls != 3 || len(result.Items) != 3 {
		t.Errorf("expected 3 calls and items, got %d calls and %d items", calls, len(result.Items))
	}
}

func TestPaginate_ExtractFailure(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, params url.Values) (json.RawMessage, error) {
		return json.RawMessage(`{"query":{}}`), nil
	}
	extract := func(body json.RawMessage) ([]int, error) {
		return nil, ErrMalformed
	}

	result := Paginate(context.Background(), fetch, url.Values{}, extract, 3)
	if !errors.Is(result.Err, ErrMalformed) || len(result.Items) != 0 {
		t.Errorf("expected malformed error and no items, got %+v", result)
	}
}

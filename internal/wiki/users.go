package wiki

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wikidash/wikidash/internal/model"
)

const (
	// MaxUsersPerRequest is the API's per-call limit for list=users.
	MaxUsersPerRequest = 50
	// maxConcurrentBatches bounds in-flight list=users calls per lookup.
	maxConcurrentBatches = 4
)

// Users fetches account metadata for registered users in batches of
// MaxUsersPerRequest. Failed batches are skipped; the first failure is
// returned alongside whatever succeeded. Results follow input batch order.
func (c *Client) Users(ctx context.Context, names []string) ([]model.UserInfo, error) {
	if len(names) == 0 {
		return nil, nil
	}

	batches := chunk(names, MaxUsersPerRequest)
	results := make([][]model.UserInfo, len(batches))

	var (
		mu       sync.Mutex
		firstErr error
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentBatches)
	for i, batch := range batches {
		g.Go(func() error {
			users, err := c.usersBatch(ctx, batch)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			results[i] = users
			return nil
		})
	}
	_ = g.Wait()

	var all []model.UserInfo
	for _, r := range results {
		all = append(all, r...)
	}
	return all, firstErr
}

// User fetches a single account.
func (c *Client) User(ctx context.Context, name string) (*model.UserInfo, error) {
	users, err := c.usersBatch(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	u := users[0]
	if u.Missing || u.Invalid {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (c *Client) usersBatch(ctx context.Context, names []string) ([]model.UserInfo, error) {
	params := url.Values{}
	params.Set("list", "users")
	params.Set("ususers", strings.Join(names, "|"))
	params.Set("usprop", "registration|editcount|blockinfo")

	body, err := c.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	q, err := decodeQuery(body)
	if err != nil {
		return nil, err
	}

	users := make([]model.UserInfo, 0, len(q.Users))
	for _, u := range q.Users {
		users = append(users, model.UserInfo{
			UserID:       u.UserID,
			Name:         u.Name,
			EditCount:    u.EditCount,
			Registration: u.Registration,
			Blocked:      u.BlockID != 0 || u.BlockedBy != "",
			Missing:      u.Missing,
			Invalid:      u.Invalid,
		})
	}
	return users, nil
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

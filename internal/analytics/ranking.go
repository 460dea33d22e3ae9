package analytics

import (
	"sort"

	"github.com/wikidash/wikidash/internal/model"
)

// unknownUser labels revisions whose author is hidden.
const unknownUser = "Unknown"

// EditorCount is one row of the top-editors ranking.
type EditorCount struct {
	User  string `json:"user"`
	Edits int    `json:"edits"`
}

// ReverterCount is one row of the top-reverters ranking.
type ReverterCount struct {
	User    string `json:"user"`
	Reverts int    `json:"reverts"`
}

// counter counts occurrences per user and remembers first-seen order so that
// ties rank deterministically.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(user string) {
	if user == "" {
		user = unknownUser
	}
	if _, ok := c.counts[user]; !ok {
		c.order = append(c.order, user)
	}
	c.counts[user]++
}

type userCount struct {
	user  string
	count int
}

// top returns at most limit users sorted by count descending; ties keep
// first-seen order.
func (c *counter) top(limit int) []userCount {
	ranked := make([]userCount, 0, len(c.order))
	for _, user := range c.order {
		ranked = append(ranked, userCount{user: user, count: c.counts[user]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopEditors ranks users by number of revisions.
func TopEditors(revs []model.Revision, limit int) []EditorCount {
	c := newCounter()
	for _, rev := range revs {
		c.add(rev.User)
	}

	ranked := c.top(limit)
	out := make([]EditorCount, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, EditorCount{User: r.user, Edits: r.count})
	}
	return out
}

// TopReverters ranks users by number of revert revisions.
func TopReverters(revs []model.Revision, detector *RevertDetector, limit int) []ReverterCount {
	c := newCounter()
	for _, rev := range revs {
		if detector.IsRevert(rev.Comment) {
			c.add(rev.User)
		}
	}

	ranked := c.top(limit)
	out := make([]ReverterCount, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, ReverterCount{User: r.user, Reverts: r.count})
	}
	return out
}

// Connection links two editors for the co-editor graph.
type Connection struct {
	Editor1  string  `json:"editor1"`
	Editor2  string  `json:"editor2"`
	Strength float64 `json:"strength"`
}

// placeholderStrength is the fixed weight of every co-editor edge.
const placeholderStrength = 0.5

// CoEditors pairs adjacent editors of a ranking. It is a visualization stub:
// the edges do not reflect actual collaboration and every edge has the same
// placeholder strength.
func CoEditors(ranking []EditorCount) []Connection {
	if len(ranking) < 2 {
		return []Connection{}
	}
	out := make([]Connection, 0, len(ranking)-1)
	for i := 0; i < len(ranking)-1; i++ {
		out = append(out, Connection{
			Editor1:  ranking[i].User,
			Editor2:  ranking[i+1].User,
			Strength: placeholderStrength,
		})
	}
	return out
}

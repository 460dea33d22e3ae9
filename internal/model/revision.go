// Package model defines the domain types shared between the wiki client,
// the analytics folds and the HTTP layer.
package model

import "time"

// dateLayout is the calendar-day bucket key format.
const dateLayout = "2006-01-02"

// Revision is one historical edit of an article.
type Revision struct {
	ID        int    `json:"revid"`
	ParentID  int    `json:"parentid,omitempty"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Comment   string `json:"comment"`
	Size      *int   `json:"size,omitempty"`
}

// Date returns the calendar-day bucket of the revision and whether the
// timestamp was well-formed enough to produce one. Timestamps are assumed
// to be UTC ISO-8601, so the first 10 characters are the day.
func (r Revision) Date() (string, bool) {
	return DateOf(r.Timestamp)
}

// DateOf truncates an ISO-8601 timestamp to its YYYY-MM-DD prefix.
func DateOf(timestamp string) (string, bool) {
	if len(timestamp) < len(dateLayout) {
		return "", false
	}
	day := timestamp[:len(dateLayout)]
	if _, err := time.Parse(dateLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// UserEdit is one entry of a user's contribution list.
type UserEdit struct {
	RevID     int    `json:"revid"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Comment   string `json:"comment"`
	Size      *int   `json:"size,omitempty"`
}

// Contribution is a user's edit count on one article.
type Contribution struct {
	Title string `json:"title"`
	Edits int    `json:"edits"`
}

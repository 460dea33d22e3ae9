package analytics

import (
	"sort"

	"github.com/wikidash/wikidash/internal/model"
)

// DateCounts maps a YYYY-MM-DD day to a count.
type DateCounts map[string]int

// Dates returns the keys in ascending order.
func (d DateCounts) Dates() []string {
	dates := make([]string, 0, len(d))
	for date := range d {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// EditTimeline counts revisions per day. Revisions with malformed
// timestamps are skipped.
func EditTimeline(revs []model.Revision) DateCounts {
	timeline := DateCounts{}
	for _, rev := range revs {
		if date, ok := rev.Date(); ok {
			timeline[date]++
		}
	}
	return timeline
}

// RevertTimeline counts revert revisions per day.
func RevertTimeline(revs []model.Revision, detector *RevertDetector) DateCounts {
	timeline := DateCounts{}
	for _, rev := range revs {
		if !detector.IsRevert(rev.Comment) {
			continue
		}
		if date, ok := rev.Date(); ok {
			timeline[date]++
		}
	}
	return timeline
}

// DailyEditors counts distinct users per day.
func DailyEditors(revs []model.Revision) DateCounts {
	users := map[string]map[string]struct{}{}
	for _, rev := range revs {
		date, ok := rev.Date()
		if !ok {
			continue
		}
		set, exists := users[date]
		if !exists {
			set = map[string]struct{}{}
			users[date] = set
		}
		set[rev.User] = struct{}{}
	}

	counts := make(DateCounts, len(users))
	for date, set := range users {
		counts[date] = len(set)
	}
	return counts
}

package analytics

import (
	"time"

	"github.com/wikidash/wikidash/internal/model"
)

// newAccountDays is the age below which an account counts as new.
const newAccountDays = 30

// Editors partitions the distinct authors of a history.
type Editors struct {
	Anonymous  []string
	Registered []string
}

// ClassifyEditors splits the distinct authors of revs, in first-seen order,
// into IP editors and registered accounts.
func ClassifyEditors(revs []model.Revision) Editors {
	seen := map[string]struct{}{}
	var e Editors
	for _, rev := range revs {
		if rev.User == "" {
			continue
		}
		if _, ok := seen[rev.User]; ok {
			continue
		}
		seen[rev.User] = struct{}{}
		if model.IsAnonymous(rev.User) {
			e.Anonymous = append(e.Anonymous, rev.User)
		} else {
			e.Registered = append(e.Registered, rev.User)
		}
	}
	return e
}

// AccountAnalysis describes the accounts that edited an article.
type AccountAnalysis struct {
	NewUsers       int            `json:"newUsers"`
	BlockedUsers   int            `json:"blockedUsers"`
	AccountAges    map[string]int `json:"accountAges"`
	AnonymousCount int            `json:"anonymousCount"`
	TotalEditors   int            `json:"totalEditors"`
	Error          string         `json:"error,omitempty"`
}

// AnalyzeAccounts folds account metadata into an AccountAnalysis. Registered
// editors missing from infos (for example because their batch failed) are
// still counted in TotalEditors but contribute no age.
func AnalyzeAccounts(editors Editors, infos []model.UserInfo, now time.Time) AccountAnalysis {
	analysis := AccountAnalysis{
		AccountAges:    make(map[string]int, len(infos)),
		AnonymousCount: len(editors.Anonymous),
		TotalEditors:   len(editors.Anonymous) + len(editors.Registered),
	}

	for _, info := range infos {
		if info.Missing || info.Invalid {
			continue
		}
		age := info.AccountAgeDays(now)
		analysis.AccountAges[info.Name] = age
		if age < newAccountDays {
			analysis.NewUsers++
		}
		if info.Blocked {
			analysis.BlockedUsers++
		}
	}

	return analysis
}

// ContributionSummary is a user's edit count per article.
type ContributionSummary struct {
	Contributions []model.Contribution `json:"contributions"`
	TotalEdits    int                  `json:"total_edits"`
	Error         string               `json:"error,omitempty"`
}

// SummarizeContributions groups a user's edits by article, most-edited
// first. Ties keep first-seen order.
func SummarizeContributions(edits []model.UserEdit) ContributionSummary {
	c := newCounter()
	for _, e := range edits {
		c.add(e.Title)
	}

	ranked := c.top(-1)
	summary := ContributionSummary{
		Contributions: make([]model.Contribution, 0, len(ranked)),
		TotalEdits:    len(edits),
	}
	for _, r := range ranked {
		summary.Contributions = append(summary.Contributions, model.Contribution{Title: r.user, Edits: r.count})
	}
	return summary
}

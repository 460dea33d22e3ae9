package analytics

import (
	"time"

	"github.com/wikidash/wikidash/internal/model"
)

// Alerts appended by AssessRisk, in evaluation order.
const (
	AlertVeryNewAccount   = "Very new account (less than 1 week old)"
	AlertNewAccount       = "New account (less than 1 month old)"
	AlertRecentAccount    = "Recent account (less than 3 months old)"
	AlertLowEditCount     = "Low edit count (fewer than 100 edits)"
	AlertBlocked          = "Account is currently blocked"
	AlertHighRevertRate   = "High revert rate on this article (over 30%)"
	AlertModerateReverts  = "Elevated revert rate on this article (over 10%)"
	AlertEditConcentrated = "Edits concentrated on this article (over half of all edits)"
)

// RiskInput is everything AssessRisk needs about one user.
type RiskInput struct {
	Username string
	// Info is nil for anonymous users, which have no account record.
	Info           *model.UserInfo
	ArticleEdits   int
	ArticleReverts int
	Now            time.Time
}

// RiskAssessment is a heuristic 0-100 suspicion score for a user.
type RiskAssessment struct {
	Username       string   `json:"username"`
	Title          string   `json:"title,omitempty"`
	Anonymous      bool     `json:"anonymous"`
	AccountAgeDays int      `json:"accountAgeDays"`
	LifetimeEdits  int      `json:"lifetimeEdits"`
	Blocked        bool     `json:"blocked"`
	ArticleEdits   int      `json:"articleEdits"`
	ArticleReverts int      `json:"articleReverts"`
	AccountRisk    int      `json:"accountRisk"`
	BehaviorRisk   int      `json:"behaviorRisk"`
	OverallRisk    int      `json:"overallRisk"`
	Alerts         []string `json:"alerts"`
	Error          string   `json:"error,omitempty"`
}

// AssessRisk scores a user's account and, when ArticleEdits > 0, their
// behavior on one article. The overall risk is the larger of the two.
func AssessRisk(in RiskInput) RiskAssessment {
	ra := RiskAssessment{
		Username:       in.Username,
		Anonymous:      model.IsAnonymous(in.Username),
		ArticleEdits:   in.ArticleEdits,
		ArticleReverts: in.ArticleReverts,
		Alerts:         []string{},
	}

	if in.Info != nil && !ra.Anonymous {
		ra.AccountAgeDays = in.Info.AccountAgeDays(in.Now)
		ra.LifetimeEdits = in.Info.EditCount
		ra.Blocked = in.Info.Blocked
		ra.AccountRisk = ra.accountRisk()
	}

	ra.BehaviorRisk = ra.behaviorRisk()
	ra.OverallRisk = max(ra.AccountRisk, ra.BehaviorRisk)
	return ra
}

func (ra *RiskAssessment) accountRisk() int {
	var risk int
	switch {
	case ra.AccountAgeDays < 7:
		risk = 90
		ra.Alerts = append(ra.Alerts, AlertVeryNewAccount)
	case ra.AccountAgeDays < 30:
		risk = 70
		ra.Alerts = append(ra.Alerts, AlertNewAccount)
	case ra.AccountAgeDays < 90:
		risk = 40
		ra.Alerts = append(ra.Alerts, AlertRecentAccount)
	case ra.LifetimeEdits < 100:
		risk = 30
		ra.Alerts = append(ra.Alerts, AlertLowEditCount)
	}

	if ra.Blocked {
		risk = min(100, risk+50)
		ra.Alerts = append(ra.Alerts, AlertBlocked)
	}
	return risk
}

func (ra *RiskAssessment) behaviorRisk() int {
	if ra.ArticleEdits <= 0 {
		return 0
	}

	var risk int
	ratio := float64(ra.ArticleReverts) / float64(ra.ArticleEdits)
	switch {
	case ratio > 0.3:
		risk = 80
		ra.Alerts = append(ra.Alerts, AlertHighRevertRate)
	case ratio > 0.1:
		risk = 50
		ra.Alerts = append(ra.Alerts, AlertModerateReverts)
	}

	if ra.LifetimeEdits > 0 && float64(ra.ArticleEdits)/float64(ra.LifetimeEdits) > 0.5 {
		risk = max(risk, 60)
		ra.Alerts = append(ra.Alerts, AlertEditConcentrated)
	}
	return risk
}

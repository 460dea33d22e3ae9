package analytics

import (
	"math"

	"github.com/wikidash/wikidash/internal/model"
)

// HotSpotThreshold is the intensity above which a day counts as a hot spot.
const HotSpotThreshold = 50.0

// IntensityReport is the per-day revision intensity of an article.
type IntensityReport struct {
	IntensityData map[string]float64 `json:"intensity_data"`
	HotSpots      int                `json:"hot_spots"`
	MaxIntensity  float64            `json:"max_intensity"`
	MaxDate       *string            `json:"max_date"`
	Error         string             `json:"error,omitempty"`
}

// IntensityScore blends conflict, activity and collaboration for one day
// with edits edits, reverts reverts and editors distinct editors. The result
// is within [0, 100] and rounded to two decimals.
func IntensityScore(edits, reverts, editors int) float64 {
	return round2(rawIntensity(edits, reverts, editors))
}

// rawIntensity is the unrounded score in [0, 100].
func rawIntensity(edits, reverts, editors int) float64 {
	var conflict float64
	if edits > 0 {
		conflict = float64(reverts) / float64(edits) * 100
	}
	activity := math.Min(100, 20*(1+float64(edits)/10))
	collab := math.Min(100, float64(editors)*15)

	score := math.Min(100, 0.4*conflict+0.4*activity+0.2*collab)
	return math.Max(0, score)
}

// RevisionIntensity scores every day that has at least one edit. The
// maximum resolves ties to the earliest day; MaxDate is nil when there are
// no dated revisions.
func RevisionIntensity(revs []model.Revision, detector *RevertDetector) IntensityReport {
	edits := EditTimeline(revs)
	reverts := RevertTimeline(revs, detector)
	editors := DailyEditors(revs)

	report := IntensityReport{IntensityData: make(map[string]float64, len(edits))}
	maxScore := 0.0
	for _, date := range edits.Dates() {
		score := rawIntensity(edits[date], reverts[date], editors[date])
		report.IntensityData[date] = round2(score)

		if score > HotSpotThreshold {
			report.HotSpots++
		}
		if report.MaxDate == nil || score > maxScore {
			d := date
			report.MaxDate = &d
			maxScore = score
		}
	}
	report.MaxIntensity = round2(maxScore)

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package report derives the compliance summary of a resolved audit.
package report

import (
	"math"
	"strconv"

	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

// ScoreCount is the number of requirements that received one score label.
type ScoreCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Statistics summarizes the scoring outcome of one audit document.
//
// Applicable excludes the not-applicable labels; CompliancePercent is
// Compliant over Applicable. An audit where nothing is applicable has
// nothing to fail, so it reports full compliance.
type Statistics struct {
	Total             int          `json:"total"`
	Applicable        int          `json:"applicable"`
	Compliant         int          `json:"compliant"`
	NonConformities   int          `json:"nonConformities"`
	CompliancePercent float64      `json:"compliancePercent"`
	ScoreCounts       []ScoreCount `json:"scoreCounts"`
}

// Compute aggregates requirement records into Statistics. Score labels are
// counted as-is, and ScoreCounts lists them in first-seen order so that the
// summary sheet reads in the same order as the checklist.
func Compute(recs []schema.RequirementRecord) Statistics {
	stats := Statistics{
		Total:       len(recs),
		ScoreCounts: make([]ScoreCount, 0, 8),
	}

	position := make(map[string]int, 8)
	notApplicable := 0

	for _, rec := range recs {
		i, seen := position[rec.Score]
		if !seen {
			i = len(stats.ScoreCounts)
			position[rec.Score] = i
			stats.ScoreCounts = append(stats.ScoreCounts, ScoreCount{Label: rec.Score})
		}
		stats.ScoreCounts[i].Count++

		switch {
		case rec.Score == schema.ScoreCompliant:
			stats.Compliant++
		case schema.IsNotApplicable(rec.Score):
			notApplicable++
		default:
			stats.NonConformities++
		}
	}

	stats.Applicable = stats.Total - notApplicable
	if stats.Applicable == 0 {
		stats.CompliancePercent = 100.0
	} else {
		pct := float64(stats.Compliant) / float64(stats.Applicable) * 100
		stats.CompliancePercent = math.Round(pct*100) / 100
	}

	return stats
}

// FormatPercent renders the compliance rate with two decimals, the way the
// summary sheet shows it.
func (s Statistics) FormatPercent() string {
	return strconv.FormatFloat(s.CompliancePercent, 'f', 2, 64)
}

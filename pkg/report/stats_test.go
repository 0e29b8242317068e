package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

func recsWithScores(scores ...string) []schema.RequirementRecord {
	out := make([]schema.RequirementRecord, len(scores))
	for i, s := range scores {
		out[i] = schema.RequirementRecord{Score: s}
	}
	return out
}

func TestComputeMixedScores(t *testing.T) {
	stats := Compute(recsWithScores("A", "B", "A", "NA", "C", "A", "Non applicable", "B"))

	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 6, stats.Applicable)
	assert.Equal(t, 3, stats.Compliant)
	assert.Equal(t, 3, stats.NonConformities)
	assert.InDelta(t, 50.0, stats.CompliancePercent, 0.0001)
}

func TestComputeRounding(t *testing.T) {
	// 2 compliant out of 3 applicable: 66.666... rounds to 66.67
	stats := Compute(recsWithScores("A", "A", "B"))
	assert.InDelta(t, 66.67, stats.CompliancePercent, 0.0001)
	assert.Equal(t, "66.67", stats.FormatPercent())
}

func TestComputeAllCompliant(t *testing.T) {
	stats := Compute(recsWithScores("A", "A", "A"))
	assert.Equal(t, 3, stats.Compliant)
	assert.Zero(t, stats.NonConformities)
	assert.InDelta(t, 100.0, stats.CompliancePercent, 0.0001)
	assert.Equal(t, "100.00", stats.FormatPercent())
}

func TestComputeNothingApplicable(t *testing.T) {
	stats := Compute(recsWithScores("NA", "N/A", "Non applicable"))
	assert.Zero(t, stats.Applicable)
	assert.InDelta(t, 100.0, stats.CompliancePercent, 0.0001, "nothing to comply with")
}

func TestComputeEmpty(t *testing.T) {
	stats := Compute(nil)
	assert.Zero(t, stats.Total)
	assert.InDelta(t, 100.0, stats.CompliancePercent, 0.0001)
	assert.Empty(t, stats.ScoreCounts)
}

func TestComputeScoreCountsFirstSeenOrder(t *testing.T) {
	stats := Compute(recsWithScores("B", "A", "B", "C", "A", "B"))

	require.Len(t, stats.ScoreCounts, 3)
	assert.Equal(t, ScoreCount{Label: "B", Count: 3}, stats.ScoreCounts[0])
	assert.Equal(t, ScoreCount{Label: "A", Count: 2}, stats.ScoreCounts[1])
	assert.Equal(t, ScoreCount{Label: "C", Count: 1}, stats.ScoreCounts[2])
}

func TestComputeUnknownLabelIsDeficiency(t *testing.T) {
	stats := Compute(recsWithScores("A", "Majeur", "KO"))
	assert.Equal(t, 3, stats.Applicable)
	assert.Equal(t, 2, stats.NonConformities)
	assert.InDelta(t, 33.33, stats.CompliancePercent, 0.0001)
}

package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

func recsWithScores(scores ...string) []schema.RequirementRecord {
	out := make([]schema.RequirementRecord, len(scores))
	for i, s := range scores {
		out[i] = schema.RequirementRecord{Num: string(rune('a' + i)), Score: s}
	}
	return out
}

func TestFilterNonConformities(t *testing.T) {
	recs := recsWithScores("A", "B", "NA", "C", "N/A", "D", "Non applicable", "KO")

	ncs := FilterNonConformities(recs)
	require.Len(t, ncs, 4)
	assert.Equal(t, "B", ncs[0].Score)
	assert.Equal(t, "C", ncs[1].Score)
	assert.Equal(t, "D", ncs[2].Score)
	assert.Equal(t, "KO", ncs[3].Score)
}

func TestFilterIsExact(t *testing.T) {
	// lowercase and padded variants of the compliant labels are deficiencies
	ncs := FilterNonConformities(recsWithScores("a", " A", "na", "n/a", "NON APPLICABLE"))
	assert.Len(t, ncs, 5)
}

func TestFilterAllCompliant(t *testing.T) {
	ncs := FilterNonConformities(recsWithScores("A", "A", "NA"))
	assert.NotNil(t, ncs)
	assert.Empty(t, ncs)
}

func TestFilterEmptyInput(t *testing.T) {
	assert.Empty(t, FilterNonConformities(nil))
}

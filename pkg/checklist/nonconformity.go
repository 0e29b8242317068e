package checklist

import "github.com/M00N69/NEOREVIEW/pkg/schema"

// FilterNonConformities keeps the records whose score raises a deficiency,
// in their original order. The compliant and not-applicable labels are
// matched exactly; an unrecognized label counts as a non-conformity rather
// than disappearing from review.
func FilterNonConformities(recs []schema.RequirementRecord) []schema.RequirementRecord {
	out := make([]schema.RequirementRecord, 0, len(recs))
	for _, rec := range recs {
		if schema.IsDeficient(rec.Score) {
			out = append(out, rec)
		}
	}
	return out
}

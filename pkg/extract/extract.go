// Package extract runs the pipeline from an uploaded IFS NEO export to
// review state: flatten, profile projection, checklist resolution,
// non-conformity filtering.
package extract

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/M00N69/NEOREVIEW/pkg/checklist"
	"github.com/M00N69/NEOREVIEW/pkg/flatten"
	"github.com/M00N69/NEOREVIEW/pkg/reftable"
	"github.com/M00N69/NEOREVIEW/pkg/report"
	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

// ErrInvalidDocument rejects an upload that is not valid JSON. The text is
// shown to reviewers as-is.
var ErrInvalidDocument = errors.New("erreur lors du décodage du fichier JSON: vérifiez que l'export IFS est au format correct")

// Warning texts are user-facing; reviewers read them in French.
const (
	warnChecklistMissing  = "liste de contrôle absente du fichier: le profil a été extrait sans les exigences"
	warnChecklistMangled  = "liste de contrôle illisible: le profil a été extrait sans les exigences"
	warnNoRequirementData = "table des exigences indisponible: les identifiants bruts sont affichés à la place des numéros"
)

// Extraction bundles everything derived from one document.
type Extraction struct {
	Profile         schema.Profile             `json:"profile"`
	Requirements    []schema.RequirementRecord `json:"requirements"`
	NonConformities []schema.RequirementRecord `json:"nonConformities"`
	Warnings        []string                   `json:"warnings"`
}

// Run extracts review state from a raw document. Only invalid JSON is a hard
// failure. A checklist that is absent or unreadable degrades to a warning
// with an empty requirement list; the profile side always proceeds. A nil
// table degrades to raw identifiers, also with a warning.
func Run(raw []byte, table *reftable.Table, logger *zap.Logger) (*Extraction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Warn("document rejected", zap.Error(err))
		return nil, ErrInvalidDocument
	}

	flat := flatten.Flatten(doc)
	ex := &Extraction{
		Profile:         schema.ExtractProfile(flat, schema.FieldMapping, nil),
		Requirements:    []schema.RequirementRecord{},
		NonConformities: []schema.RequirementRecord{},
	}

	recs, err := checklist.Resolve(raw, table, logger)
	switch {
	case errors.Is(err, checklist.ErrChecklistMissing):
		logger.Warn("checklist missing from document")
		ex.Warnings = append(ex.Warnings, warnChecklistMissing)
	case err != nil:
		logger.Warn("checklist unreadable", zap.Error(err))
		ex.Warnings = append(ex.Warnings, warnChecklistMangled)
	default:
		ex.Requirements = recs
		ex.NonConformities = checklist.FilterNonConformities(recs)
		if table.Len() == 0 && len(recs) > 0 {
			ex.Warnings = append(ex.Warnings, warnNoRequirementData)
		}
	}

	logger.Info("extraction complete",
		zap.Int("leaves", len(flat)),
		zap.Int("requirements", len(ex.Requirements)),
		zap.Int("nonConformities", len(ex.NonConformities)),
		zap.Int("warnings", len(ex.Warnings)))
	return ex, nil
}

// Statistics summarizes the extraction's scoring outcome. Derived on demand;
// nothing caches it.
func (e *Extraction) Statistics() report.Statistics {
	return report.Compute(e.Requirements)
}

// CompanyID returns the portal COID from the profile, empty when the
// document does not carry one. Callers use it for session identity and
// download filenames, so the NotAvailable sentinel maps to empty here.
func (e *Extraction) CompanyID() string {
	return profileValue(e.Profile, schema.CoidLabel)
}

// CompanyName returns the audited site name, empty when absent.
func (e *Extraction) CompanyName() string {
	return profileValue(e.Profile, schema.SiteNameLabel)
}

func profileValue(p schema.Profile, label string) string {
	s := p.GetString(label)
	if s == schema.NotAvailable {
		return ""
	}
	return s
}

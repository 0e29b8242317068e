// Package session holds per-review state: one Session per uploaded document
// or resumed save. Sessions live in memory only; the work-save workbook is
// the single way state outlives the process.
package session

import (
	"time"

	"github.com/M00N69/NEOREVIEW/pkg/extract"
	"github.com/M00N69/NEOREVIEW/pkg/schema"
	"github.com/M00N69/NEOREVIEW/pkg/workbook"
)

// Session is the review state behind one id. No field is shared across
// sessions; mutate only through Store.
type Session struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	CompanyName string    `json:"companyName"`
	CreatedAt   time.Time `json:"createdAt"`
	Resumed     bool      `json:"resumed"`

	Profile         schema.Profile             `json:"profile"`
	Requirements    []schema.RequirementRecord `json:"requirements"`
	NonConformities []schema.RequirementRecord `json:"nonConformities"`
	Commentary      *schema.Commentary         `json:"commentary"`
	Warnings        []string                   `json:"warnings"`
}

// FromExtraction builds a fresh session from an extraction run. Explicit
// company parameters win over what the document carries.
func FromExtraction(ex *extract.Extraction, companyID, companyName string) *Session {
	if companyID == "" {
		companyID = ex.CompanyID()
	}
	if companyName == "" {
		companyName = ex.CompanyName()
	}
	return &Session{
		CompanyID:       companyID,
		CompanyName:     companyName,
		Profile:         ex.Profile,
		Requirements:    ex.Requirements,
		NonConformities: ex.NonConformities,
		Commentary:      schema.NewCommentary(),
		Warnings:        ex.Warnings,
	}
}

// FromWorkSave rebuilds a session from an imported work save, commentary
// included.
func FromWorkSave(ws *workbook.WorkSave) *Session {
	return &Session{
		CompanyID:       ws.CompanyID,
		CompanyName:     ws.CompanyName,
		Resumed:         true,
		Profile:         ws.Profile,
		Requirements:    ws.Requirements,
		NonConformities: ws.NonConformities,
		Commentary:      ws.Commentary,
	}
}

// HasProfileLabel reports whether the profile carries a field with label.
func (s *Session) HasProfileLabel(label string) bool {
	_, ok := s.Profile.Get(label)
	return ok
}

// HasRequirement reports whether any checklist record carries num.
func (s *Session) HasRequirement(num string) bool {
	return hasNum(s.Requirements, num)
}

// HasNonConformity reports whether any non-conformity record carries num.
func (s *Session) HasNonConformity(num string) bool {
	return hasNum(s.NonConformities, num)
}

func hasNum(recs []schema.RequirementRecord, num string) bool {
	for _, rec := range recs {
		if rec.Num == num {
			return true
		}
	}
	return false
}

package workbook

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

// ErrNotAWorkFile rejects a workbook that does not carry the save marker:
// either the metadata sheet is missing or its file-type row says something
// else. Final reports fall in this bucket on purpose.
var ErrNotAWorkFile = errors.New("not a NEOREVIEW work save")

// Sheet is one worksheet read back as a header-keyed table. Header keeps the
// sheet's column order after migration; columns the schema does not know are
// preserved untouched.
type Sheet struct {
	Name   string              `json:"name"`
	Header []string            `json:"header"`
	Rows   []map[string]string `json:"rows"`
}

// WorkSave is the review state reconstructed from a saved workbook. Profile
// values are the sheet's cell strings.
type WorkSave struct {
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
	SavedAt     string `json:"savedAt"`
	Purpose     string `json:"purpose"`

	Profile         schema.Profile             `json:"profile"`
	Requirements    []schema.RequirementRecord `json:"requirements"`
	NonConformities []schema.RequirementRecord `json:"nonConformities"`
	Commentary      *schema.Commentary         `json:"commentary"`

	Sheets map[string]*Sheet `json:"-"`
}

// Read parses a work-save workbook back into review state. The marker check
// comes first; without it the file is rejected as ErrNotAWorkFile before
// anything else is interpreted. Legacy column names are migrated to the
// current schema as the sheets are read, which makes reading a current-schema
// file a no-op with respect to migration.
func Read(data []byte) (*WorkSave, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	ws := &WorkSave{
		Commentary: schema.NewCommentary(),
		Sheets:     make(map[string]*Sheet),
	}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		ws.Sheets[name] = tableFromRows(name, rows)
	}

	meta := ws.Sheets[schema.SheetMetadata]
	if meta == nil {
		return nil, ErrNotAWorkFile
	}
	kv := keyValues(meta)
	if kv[schema.MetaFileType] != schema.WorkSaveMarker {
		return nil, ErrNotAWorkFile
	}
	ws.CompanyID = kv[schema.MetaCompanyID]
	ws.CompanyName = kv[schema.MetaCompany]
	ws.SavedAt = kv[schema.MetaSavedAt]
	ws.Purpose = kv[schema.MetaPurpose]

	if s := ws.Sheets[schema.SheetProfile]; s != nil {
		ws.readProfile(s)
	}
	if s := ws.Sheets[schema.SheetChecklist]; s != nil {
		ws.Requirements = ws.readRecords(s, false)
	}
	if s := ws.Sheets[schema.SheetNonConformities]; s != nil {
		ws.NonConformities = ws.readRecords(s, true)
	}

	return ws, nil
}

// tableFromRows builds a Sheet from raw cell rows. Data rows are padded to
// the header width; with duplicate header names the first column wins.
func tableFromRows(name string, rows [][]string) *Sheet {
	s := &Sheet{Name: name}
	if len(rows) == 0 {
		return s
	}

	s.Header = migrateHeader(rows[0])
	for _, cells := range rows[1:] {
		rec := make(map[string]string, len(s.Header))
		for i, col := range s.Header {
			if _, taken := rec[col]; taken {
				continue
			}
			if i < len(cells) {
				rec[col] = cells[i]
			} else {
				rec[col] = ""
			}
		}
		s.Rows = append(s.Rows, rec)
	}
	return s
}

// migrateHeader rewrites a header row onto the current schema. Accent or
// case variants of current columns take the canonical spelling; a legacy
// alias is renamed onto its target only when no current-schema column
// already claims that target. Unknown headers pass through unchanged.
func migrateHeader(header []string) []string {
	claimed := make(map[string]bool, len(header))
	for _, h := range header {
		if col, ok := schema.CanonicalColumn(h); ok {
			claimed[col] = true
		}
	}

	out := make([]string, len(header))
	for i, h := range header {
		if col, ok := schema.CanonicalColumn(h); ok {
			out[i] = col
			continue
		}
		if target, ok := schema.LegacyTarget(h); ok && !claimed[target] {
			claimed[target] = true
			out[i] = target
			continue
		}
		out[i] = h
	}
	return out
}

// keyValues reads a Champ/Valeur sheet into a plain map.
func keyValues(s *Sheet) map[string]string {
	kv := make(map[string]string, len(s.Rows))
	for _, row := range s.Rows {
		if key := row[schema.ColField]; key != "" {
			kv[key] = row[schema.ColValue]
		}
	}
	return kv
}

func (ws *WorkSave) readProfile(s *Sheet) {
	ws.Profile = make(schema.Profile, 0, len(s.Rows))
	for _, row := range s.Rows {
		label := row[schema.ColField]
		if label == "" {
			continue
		}
		ws.Profile = append(ws.Profile, schema.ProfileField{Label: label, Value: row[schema.ColValue]})

		com := schema.Comment{
			Reviewer: row[schema.ColReviewerComment],
			Auditor:  row[schema.ColAuditorResponse],
		}
		if !com.Empty() {
			ws.Commentary.Profile[label] = com
		}
	}
}

func (ws *WorkSave) readRecords(s *Sheet, withActions bool) []schema.RequirementRecord {
	recs := make([]schema.RequirementRecord, 0, len(s.Rows))
	for _, row := range s.Rows {
		num := row[schema.ColNum]
		if num == "" {
			continue
		}
		recs = append(recs, schema.RequirementRecord{
			Num:                 num,
			UUID:                row[schema.ColUUID],
			Chapter:             row[schema.ColChapter],
			Theme:               row[schema.ColTheme],
			SubTheme:            row[schema.ColSubTheme],
			Explanation:         row[schema.ColExplanation],
			DetailedExplanation: row[schema.ColDetailedExplanation],
			Score:               row[schema.ColScore],
			Response:            row[schema.ColResponse],
		})

		if withActions {
			com := schema.ActionComment{
				Comment: schema.Comment{
					Reviewer: row[schema.ColReviewerComment],
					Auditor:  row[schema.ColAuditorResponse],
				},
				ActionPlan:          row[schema.ColActionPlan],
				ImplementationNotes: row[schema.ColImplementationNotes],
				Deadline:            row[schema.ColDeadline],
				Responsible:         row[schema.ColResponsible],
				Status:              schema.Status(row[schema.ColStatus]),
			}
			if !com.Empty() {
				ws.Commentary.NonConformities[num] = com
			}
		} else {
			com := schema.Comment{
				Reviewer: row[schema.ColReviewerComment],
				Auditor:  row[schema.ColAuditorResponse],
			}
			if !com.Empty() {
				ws.Commentary.Checklist[num] = com
			}
		}
	}
	return recs
}

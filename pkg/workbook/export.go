// Package workbook writes and reads the xlsx files that carry an audit
// review out of and back into a session: the resumable work save and the
// distributable final report.
package workbook

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/M00N69/NEOREVIEW/pkg/report"
	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

// Meta identifies the company whose review a workbook carries.
type Meta struct {
	CompanyID   string
	CompanyName string
	SavedAt     time.Time
	Purpose     string
}

// DefaultPurpose is the Usage metadata row of a work save.
const DefaultPurpose = "Sauvegarde de travail NEOREVIEW"

// BuildWorkSave renders the resumable workbook: metadata sheet with the
// save marker, then one sheet per collection with commentary merged into
// each row. The commentary argument may be nil.
func BuildWorkSave(profile schema.Profile, recs, ncs []schema.RequirementRecord, commentary *schema.Commentary, meta Meta) ([]byte, error) {
	if commentary == nil {
		commentary = schema.NewCommentary()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, schema.SheetMetadata, true, schema.MetadataColumns, metadataRows(meta)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schema.SheetProfile, false, schema.ProfileColumns, profileRows(profile, commentary)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schema.SheetChecklist, false, schema.ChecklistColumns, checklistRows(recs, commentary)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schema.SheetNonConformities, false, schema.NonConformityColumns, nonConformityRows(ncs, commentary)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildFinalReport renders the distributable workbook: the three collection
// sheets plus the statistics summary. It carries no metadata sheet and no
// save marker, so it cannot be mistaken for a resumable save.
func BuildFinalReport(profile schema.Profile, recs, ncs []schema.RequirementRecord, commentary *schema.Commentary, stats report.Statistics) ([]byte, error) {
	if commentary == nil {
		commentary = schema.NewCommentary()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, schema.SheetProfile, true, schema.ProfileColumns, profileRows(profile, commentary)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schema.SheetChecklist, false, schema.ChecklistColumns, checklistRows(recs, commentary)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schema.SheetNonConformities, false, schema.NonConformityColumns, nonConformityRows(ncs, commentary)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schema.SheetStatistics, false, statisticsColumns, statisticsRows(stats)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WorkSaveFilename names a work-save download after the company id, the
// extraction_<coid>.xlsx convention reviewers already know.
func WorkSaveFilename(companyID string) string {
	if companyID == "" {
		companyID = "inconnu"
	}
	return fmt.Sprintf("extraction_%s.xlsx", companyID)
}

// ReportFilename names a final-report download.
func ReportFilename(companyID string) string {
	if companyID == "" {
		companyID = "inconnu"
	}
	return fmt.Sprintf("rapport_%s.xlsx", companyID)
}

var statisticsColumns = []string{"Indicateur", "Valeur"}

func metadataRows(meta Meta) [][]string {
	savedAt := meta.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	purpose := meta.Purpose
	if purpose == "" {
		purpose = DefaultPurpose
	}
	return [][]string{
		{schema.MetaFileType, schema.WorkSaveMarker},
		{schema.MetaCompanyID, meta.CompanyID},
		{schema.MetaCompany, meta.CompanyName},
		{schema.MetaSavedAt, savedAt.Format(schema.MetaSavedAtLayout)},
		{schema.MetaPurpose, purpose},
	}
}

func profileRows(profile schema.Profile, c *schema.Commentary) [][]string {
	rows := make([][]string, 0, len(profile))
	for _, field := range profile {
		com := c.Profile[field.Label]
		rows = append(rows, []string{
			field.Label,
			schema.CellString(field.Value),
			com.Reviewer,
			com.Auditor,
		})
	}
	return rows
}

func checklistRows(recs []schema.RequirementRecord, c *schema.Commentary) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		com := c.Checklist[rec.Num]
		rows = append(rows, append(recordCells(rec), com.Reviewer, com.Auditor))
	}
	return rows
}

func nonConformityRows(ncs []schema.RequirementRecord, c *schema.Commentary) [][]string {
	rows := make([][]string, 0, len(ncs))
	for _, rec := range ncs {
		com := c.NonConformities[rec.Num]
		rows = append(rows, append(recordCells(rec),
			com.Reviewer,
			com.Auditor,
			com.ActionPlan,
			com.ImplementationNotes,
			com.Deadline,
			com.Responsible,
			string(com.Status),
		))
	}
	return rows
}

func recordCells(rec schema.RequirementRecord) []string {
	return []string{
		rec.Num,
		rec.UUID,
		rec.Chapter,
		rec.Theme,
		rec.SubTheme,
		rec.Explanation,
		rec.DetailedExplanation,
		rec.Score,
		rec.Response,
	}
}

func statisticsRows(stats report.Statistics) [][]string {
	rows := [][]string{
		{"Nombre total d'exigences", fmt.Sprintf("%d", stats.Total)},
		{"Exigences applicables", fmt.Sprintf("%d", stats.Applicable)},
		{"Exigences conformes", fmt.Sprintf("%d", stats.Compliant)},
		{"Non-conformités", fmt.Sprintf("%d", stats.NonConformities)},
		{"Taux de conformité (%)", stats.FormatPercent()},
	}
	for _, sc := range stats.ScoreCounts {
		rows = append(rows, []string{fmt.Sprintf("Exigences notées %s", sc.Label), fmt.Sprintf("%d", sc.Count)})
	}
	return rows
}

// maxColWidth keeps the content-driven width formula inside what xlsx
// allows.
const maxColWidth = 120

// writeSheet fills one worksheet with a header row and data rows, then sets
// each column's width from its longest cell. The first sheet written takes
// over the file's default sheet.
func writeSheet(f *excelize.File, name string, first bool, header []string, rows [][]string) error {
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	} else {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	widths := make([]int, len(header))
	writeRow := func(rowNum int, cells []string) error {
		for i, cell := range cells {
			ref, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, ref, cell); err != nil {
				return err
			}
			if i < len(widths) {
				if n := utf8.RuneCountInString(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
		return nil
	}

	if err := writeRow(1, header); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	for r, row := range rows {
		if err := writeRow(r+2, row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, r+2, err)
		}
	}

	for i := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		w := float64(widths[i]+2) * 1.2
		if w > maxColWidth {
			w = maxColWidth
		}
		if err := f.SetColWidth(name, col, col, w); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	return nil
}

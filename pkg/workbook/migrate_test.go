package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

// legacyWorkbook builds a save the way the first revision wrote it: English
// data columns, "Commentaire de l'utilisateur" for the reviewer channel.
func legacyWorkbook(t *testing.T, extraChecklistHeader string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", schema.SheetMetadata))
	metaRows := [][]string{
		{"Champ", "Valeur"},
		{schema.MetaFileType, schema.WorkSaveMarker},
		{schema.MetaCompanyID, "999"},
	}
	writeRawRows(t, f, schema.SheetMetadata, metaRows)

	_, err := f.NewSheet(schema.SheetProfile)
	require.NoError(t, err)
	writeRawRows(t, f, schema.SheetProfile, [][]string{
		{"Field", "Value", "Commentaire de l'utilisateur", "Réponse de l'auditeur"},
		{"Pays", "France", "vérifié", ""},
	})

	_, err = f.NewSheet(schema.SheetChecklist)
	require.NoError(t, err)
	header := []string{"Num", "Explanation", "Detailed Explanation", "Score", "Response", "Commentaire"}
	if extraChecklistHeader != "" {
		header = append(header, extraChecklistHeader)
	}
	row := []string{"1.1.1", "Policy", "Politique écrite", "B", "incomplet", "voir preuve"}
	if extraChecklistHeader != "" {
		row = append(row, "valeur conservée")
	}
	writeRawRows(t, f, schema.SheetChecklist, [][]string{header, row})

	_, err = f.NewSheet(schema.SheetNonConformities)
	require.NoError(t, err)
	writeRawRows(t, f, schema.SheetNonConformities, [][]string{
		{"Num", "Score", "Commentaire", "Plan d'action"},
		{"1.1.1", "B", "non conforme", "former l'équipe"},
	})

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func writeRawRows(t *testing.T, f *excelize.File, sheet string, rows [][]string) {
	t.Helper()
	for r, row := range rows {
		for c, cell := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, cell))
		}
	}
}

func TestReadMigratesLegacyColumns(t *testing.T) {
	ws, err := Read(legacyWorkbook(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "999", ws.CompanyID)

	require.Len(t, ws.Profile, 1)
	assert.Equal(t, "Pays", ws.Profile[0].Label)
	assert.Equal(t, "France", ws.Profile[0].Value)
	assert.Equal(t, "vérifié", ws.Commentary.Profile["Pays"].Reviewer)

	require.Len(t, ws.Requirements, 1)
	rec := ws.Requirements[0]
	assert.Equal(t, "1.1.1", rec.Num)
	assert.Equal(t, "Policy", rec.Explanation)
	assert.Equal(t, "Politique écrite", rec.DetailedExplanation)
	assert.Equal(t, "B", rec.Score)
	assert.Equal(t, "incomplet", rec.Response)
	assert.Equal(t, "voir preuve", ws.Commentary.Checklist["1.1.1"].Reviewer)

	nc := ws.Commentary.NonConformities["1.1.1"]
	assert.Equal(t, "non conforme", nc.Reviewer)
	assert.Equal(t, "former l'équipe", nc.ActionPlan)

	// migrated headers use the current spelling
	checklist := ws.Sheets[schema.SheetChecklist]
	assert.Contains(t, checklist.Header, schema.ColExplanation)
	assert.Contains(t, checklist.Header, schema.ColReviewerComment)
	assert.NotContains(t, checklist.Header, "Commentaire")
}

func TestReadPreservesUnknownColumns(t *testing.T) {
	ws, err := Read(legacyWorkbook(t, "Colonne maison"))
	require.NoError(t, err)

	checklist := ws.Sheets[schema.SheetChecklist]
	require.NotNil(t, checklist)
	assert.Contains(t, checklist.Header, "Colonne maison")
	require.Len(t, checklist.Rows, 1)
	assert.Equal(t, "valeur conservée", checklist.Rows[0]["Colonne maison"])
}

func TestReadLegacyThenReexportIsStable(t *testing.T) {
	ws1, err := Read(legacyWorkbook(t, ""))
	require.NoError(t, err)

	data, err := BuildWorkSave(ws1.Profile, ws1.Requirements, ws1.NonConformities, ws1.Commentary, Meta{CompanyID: ws1.CompanyID})
	require.NoError(t, err)
	ws2, err := Read(data)
	require.NoError(t, err)

	assert.Equal(t, ws1.Profile, ws2.Profile)
	assert.Equal(t, ws1.Requirements, ws2.Requirements)
	assert.Equal(t, ws1.Commentary, ws2.Commentary)
}

func TestMigrateHeaderTargetWins(t *testing.T) {
	// when the current column is already there, the alias is left alone and
	// its values are not merged
	header := migrateHeader([]string{"Num", "Commentaire", "Commentaire du reviewer"})
	assert.Equal(t, []string{"Num", "Commentaire", "Commentaire du reviewer"}, header)
}

func TestMigrateHeaderAccentVariants(t *testing.T) {
	header := migrateHeader([]string{"NUM", "echeance", "Reponse"})
	assert.Equal(t, []string{schema.ColNum, schema.ColDeadline, schema.ColResponse}, header)
}

func TestMigrateHeaderIdempotent(t *testing.T) {
	once := migrateHeader(schema.NonConformityColumns)
	assert.Equal(t, schema.NonConformityColumns, once)
	assert.Equal(t, once, migrateHeader(once))
}

func TestMigrateHeaderTwoAliasesOneTarget(t *testing.T) {
	// first alias claims the target, the second stays as it was
	header := migrateHeader([]string{"Commentaire", "Commentaire de l'utilisateur"})
	assert.Equal(t, []string{schema.ColReviewerComment, "Commentaire de l'utilisateur"}, header)
}

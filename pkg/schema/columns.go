package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sheet names of exported workbooks. A work save carries the first four; a
// final report swaps Metadata for Statistiques.
const (
	SheetMetadata        = "Metadata"
	SheetProfile         = "Profile"
	SheetChecklist       = "Checklist"
	SheetNonConformities = "Non-conformities"
	SheetStatistics      = "Statistiques"
)

// WorkSaveMarker identifies a workbook produced by a work-save export. Import
// refuses any workbook whose metadata sheet does not carry it.
const WorkSaveMarker = "NEOREVIEW_SAUVEGARDE"

// Metadata sheet keys.
const (
	MetaFileType  = "Type de fichier"
	MetaCompanyID = "N° COID"
	MetaCompany   = "Société"
	MetaSavedAt   = "Date de sauvegarde"
	MetaPurpose   = "Usage"
)

// MetaSavedAtLayout is the timestamp layout of the Date de sauvegarde row.
const MetaSavedAtLayout = "2006-01-02 15:04:05"

// Column names of the current workbook schema.
const (
	ColField               = "Champ"
	ColValue               = "Valeur"
	ColNum                 = "Num"
	ColUUID                = "UUID"
	ColChapter             = "Chapitre"
	ColTheme               = "Theme"
	ColSubTheme            = "SSTheme"
	ColExplanation         = "Explication"
	ColDetailedExplanation = "Explication détaillée"
	ColScore               = "Note"
	ColResponse            = "Réponse"
	ColReviewerComment     = "Commentaire du reviewer"
	ColAuditorResponse     = "Réponse de l'auditeur"
	ColActionPlan          = "Plan d'action proposé"
	ColImplementationNotes = "Notes de mise en œuvre"
	ColDeadline            = "Échéance"
	ColResponsible         = "Responsable"
	ColStatus              = "Statut"
)

// Fixed column orders per sheet. Export writes exactly these, in this order,
// synthesizing empty cells for columns the data does not carry.
var (
	MetadataColumns = []string{ColField, ColValue}

	ProfileColumns = []string{ColField, ColValue, ColReviewerComment, ColAuditorResponse}

	ChecklistColumns = []string{
		ColNum, ColUUID, ColChapter, ColTheme, ColSubTheme,
		ColExplanation, ColDetailedExplanation, ColScore, ColResponse,
		ColReviewerComment, ColAuditorResponse,
	}

	NonConformityColumns = []string{
		ColNum, ColUUID, ColChapter, ColTheme, ColSubTheme,
		ColExplanation, ColDetailedExplanation, ColScore, ColResponse,
		ColReviewerComment, ColAuditorResponse,
		ColActionPlan, ColImplementationNotes, ColDeadline, ColResponsible, ColStatus,
	}
)

// LegacyAliases maps column names from earlier workbook revisions to their
// current names. Import rewrites these in place so that saves written by any
// revision reload under the current schema.
var LegacyAliases = map[string]string{
	// the reviewer channel before it had a name of its own
	"Commentaire":                  ColReviewerComment,
	"Commentaire de l'utilisateur": ColReviewerComment,

	// action plan column before the proposé wording
	"Plan d'action": ColActionPlan,

	// first revision exported English data columns
	"Field":                ColField,
	"Value":                ColValue,
	"Explanation":          ColExplanation,
	"Detailed Explanation": ColDetailedExplanation,
	"Score":                ColScore,
	"Response":             ColResponse,
}

// columnsByNormal indexes every current column name by its normalized form.
var columnsByNormal = map[string]string{}

// aliasesByNormal indexes the legacy aliases by their normalized form.
var aliasesByNormal = map[string]string{}

func init() {
	for _, col := range []string{
		ColField, ColValue, ColNum, ColUUID, ColChapter, ColTheme, ColSubTheme,
		ColExplanation, ColDetailedExplanation, ColScore, ColResponse,
		ColReviewerComment, ColAuditorResponse,
		ColActionPlan, ColImplementationNotes, ColDeadline, ColResponsible, ColStatus,
	} {
		columnsByNormal[NormalizeHeader(col)] = col
	}
	for alias, target := range LegacyAliases {
		aliasesByNormal[NormalizeHeader(alias)] = target
	}
}

// NormalizeHeader folds a column header for comparison: lowercase, diacritics
// stripped, whitespace collapsed. "ÉCHÉANCE " and "échéance" resolve to the
// same column.
func NormalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = stripDiacritics(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripDiacritics removes accents by decomposing to NFD and dropping
// combining marks (the Mn category).
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var out strings.Builder
	out.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// CanonicalColumn maps a header to the current schema column it spells,
// under NormalizeHeader folding. "ECHEANCE" resolves to "Échéance".
func CanonicalColumn(header string) (string, bool) {
	col, ok := columnsByNormal[NormalizeHeader(header)]
	return col, ok
}

// LegacyTarget maps a retired column name to the current column its values
// belong to. Whether the copy actually happens is the importer's call: the
// alias only applies when the target column is absent from the sheet.
func LegacyTarget(header string) (string, bool) {
	col, ok := aliasesByNormal[NormalizeHeader(header)]
	return col, ok
}

// ResolveColumn maps an imported header to its current schema column. It
// tries the current names first, then the legacy aliases, both under
// NormalizeHeader folding. Headers belonging to neither are returned as-is
// with ok=false; import keeps such columns untouched.
func ResolveColumn(header string) (string, bool) {
	if col, ok := CanonicalColumn(header); ok {
		return col, true
	}
	if col, ok := LegacyTarget(header); ok {
		return col, true
	}
	return header, false
}

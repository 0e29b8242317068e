package schema

import (
	"fmt"
	"strconv"
)

// FieldPath binds a human-readable profile label to the flattened path where
// its value lives in the vendor export.
type FieldPath struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// FieldMapping is the versioned dictionary of company profile fields. Labels
// are the French strings shown to reviewers; paths follow the flattened key
// syntax of the IFS NEO export. Order is meaningful: extracted profiles and
// exported sheets list fields in this order.
//
// The dictionary is data, not structure. When the vendor moves a field,
// update the path here; nothing else changes.
var FieldMapping = []FieldPath{
	{"Nom du site à auditer", "data_modules_food_8_questions_companyName_answer"},
	{"N° COID du portail", "data_modules_food_8_questions_companyCoid_answer"},
	{"Code GLN", "data_modules_food_8_questions_companyGln_answer_0_rootQuestions_companyGlnNumber_answer"},
	{"Rue", "data_modules_food_8_questions_companyStreetNo_answer"},
	{"Code postal", "data_modules_food_8_questions_companyZip_answer"},
	{"Nom de la ville", "data_modules_food_8_questions_companyCity_answer"},
	{"Pays", "data_modules_food_8_questions_companyCountry_answer"},
	{"Téléphone", "data_modules_food_8_questions_companyTelephone_answer"},
	{"Latitude", "data_modules_food_8_questions_companyGpsLatitude_answer"},
	{"Longitude", "data_modules_food_8_questions_companyGpsLongitude_answer"},
	{"Email", "data_modules_food_8_questions_companyEmail_answer"},
	{"Nom du siège social", "data_modules_food_8_questions_headquartersName_answer"},
	{"Rue (siège social)", "data_modules_food_8_questions_headquartersStreetNo_answer"},
	{"Nom de la ville (siège social)", "data_modules_food_8_questions_headquartersCity_answer"},
	{"Code postal (siège social)", "data_modules_food_8_questions_headquartersZip_answer"},
	{"Pays (siège social)", "data_modules_food_8_questions_headquartersCountry_answer"},
	{"Téléphone (siège social)", "data_modules_food_8_questions_headquartersTelephone_answer"},
	{"Surface couverte de l'entreprise (m²)", "data_modules_food_8_questions_productionAreaSize_answer"},
	{"Nombre de bâtiments", "data_modules_food_8_questions_numberOfBuildings_answer"},
	{"Nombre de lignes de production", "data_modules_food_8_questions_numberOfProductionLines_answer"},
	{"Nombre d'étages", "data_modules_food_8_questions_numberOfFloors_answer"},
	{"Nombre maximum d'employés dans l'année, au pic de production", "data_modules_food_8_questions_numberOfEmployeesForTimeCalculation_answer"},
	{"Langue parlée et écrite sur le site", "data_modules_food_8_questions_workingLanguage_answer"},
	{"Périmètre de l'audit", "data_modules_food_8_questions_scopeCertificateScopeDescription_en_answer"},
	{"Process et activités", "data_modules_food_8_questions_scopeProductGroupsDescription_answer"},
	{"Activité saisonnière ? (O/N)", "data_modules_food_8_questions_seasonalProduction_answer"},
	{"Une partie du procédé de fabrication est-elle sous traitée? (OUI/NON)", "data_modules_food_8_questions_partlyOutsourcedProcesses_answer"},
	{"Si oui lister les procédés sous-traités", "data_modules_food_8_questions_partlyOutsourcedProcessesDescription_answer"},
	{"Avez-vous des produits totalement sous-traités? (OUI/NON)", "data_modules_food_8_questions_fullyOutsourcedProducts_answer"},
	{"Si oui, lister les produits totalement sous-traités", "data_modules_food_8_questions_fullyOutsourcedProductsDescription_answer"},
	{"Avez-vous des produits de négoce? (OUI/NON)", "data_modules_food_8_questions_tradedProductsBrokerActivity_answer"},
	{"Si oui, lister les produits de négoce", "data_modules_food_8_questions_tradedProductsBrokerActivityDescription_answer"},
	{"Produits à exclure du champ d'audit (OUI/NON)", "data_modules_food_8_questions_exclusions_answer"},
	{"Préciser les produits à exclure", "data_modules_food_8_questions_exclusionsDescription_answer"},
}

// Labels returns every label of the dictionary, in dictionary order.
func Labels() []string {
	out := make([]string, len(FieldMapping))
	for i, f := range FieldMapping {
		out[i] = f.Label
	}
	return out
}

// PathFor returns the flattened path bound to label, if the dictionary
// carries it.
func PathFor(label string) (string, bool) {
	for _, f := range FieldMapping {
		if f.Label == label {
			return f.Path, true
		}
	}
	return "", false
}

// CoidLabel names the dictionary entry carrying the portal company id. The
// value seeds session identity and export file names.
const CoidLabel = "N° COID du portail"

// SiteNameLabel names the dictionary entry carrying the audited site name.
const SiteNameLabel = "Nom du site à auditer"

// ExtractProfile projects a flattened document through a field dictionary.
// Only labels present in selected are emitted; a nil selection means every
// dictionary entry. Output order always follows the dictionary, whatever
// order the selection came in. Labels unknown to the dictionary are skipped.
// A path missing from flat yields the NotAvailable sentinel, never an error.
func ExtractProfile(flat map[string]interface{}, mapping []FieldPath, selected []string) Profile {
	var want map[string]bool
	if selected != nil {
		want = make(map[string]bool, len(selected))
		for _, label := range selected {
			want[label] = true
		}
	}
	out := make(Profile, 0, len(mapping))
	for _, f := range mapping {
		if want != nil && !want[f.Label] {
			continue
		}
		v, ok := flat[f.Path]
		if !ok {
			v = NotAvailable
		}
		out = append(out, ProfileField{Label: f.Label, Value: v})
	}
	return out
}

// CellString renders an extracted value the way it appears in a sheet cell.
// Null leaves render empty, not as the NotAvailable sentinel: a null is a
// value the document does carry.
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

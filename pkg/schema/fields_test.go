package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMappingShape(t *testing.T) {
	require.Len(t, FieldMapping, 34)

	seen := make(map[string]bool)
	for _, f := range FieldMapping {
		assert.NotEmpty(t, f.Label)
		assert.False(t, seen[f.Label], "duplicate label %q", f.Label)
		seen[f.Label] = true
		assert.True(t, strings.HasPrefix(f.Path, "data_modules_food_8_"),
			"path %q outside the food_8 module", f.Path)
	}
}

func TestPathFor(t *testing.T) {
	path, ok := PathFor(CoidLabel)
	require.True(t, ok)
	assert.Equal(t, "data_modules_food_8_questions_companyCoid_answer", path)

	_, ok = PathFor("Champ inconnu")
	assert.False(t, ok)
}

func TestExtractProfileAll(t *testing.T) {
	flat := map[string]interface{}{
		"data_modules_food_8_questions_companyName_answer": "Fromagerie du Jura",
		"data_modules_food_8_questions_companyCoid_answer": float64(48455),
	}

	profile := ExtractProfile(flat, FieldMapping, nil)
	require.Len(t, profile, len(FieldMapping))

	// dictionary order is preserved
	assert.Equal(t, "Nom du site à auditer", profile[0].Label)
	assert.Equal(t, "Fromagerie du Jura", profile[0].Value)
	assert.Equal(t, CoidLabel, profile[1].Label)
	assert.Equal(t, float64(48455), profile[1].Value)

	// every unmapped path falls back to the sentinel
	v, ok := profile.Get("Pays")
	require.True(t, ok)
	assert.Equal(t, NotAvailable, v)
}

func TestExtractProfileSelection(t *testing.T) {
	flat := map[string]interface{}{
		"data_modules_food_8_questions_companyCity_answer": "Poligny",
		"data_modules_food_8_questions_companyName_answer": "Site A",
	}

	// selection order does not matter; dictionary order wins
	profile := ExtractProfile(flat, FieldMapping, []string{"Nom de la ville", "Nom du site à auditer"})
	require.Len(t, profile, 2)
	assert.Equal(t, "Nom du site à auditer", profile[0].Label)
	assert.Equal(t, "Nom de la ville", profile[1].Label)
	assert.Equal(t, "Poligny", profile[1].Value)
}

func TestExtractProfileUnknownLabelSkipped(t *testing.T) {
	profile := ExtractProfile(map[string]interface{}{}, FieldMapping, []string{"Pays", "Champ inconnu"})
	require.Len(t, profile, 1)
	assert.Equal(t, "Pays", profile[0].Label)
	assert.Equal(t, NotAvailable, profile[0].Value)
}

func TestExtractProfileEmptySelection(t *testing.T) {
	// empty (non-nil) selection means no fields, unlike nil which means all
	profile := ExtractProfile(map[string]interface{}{}, FieldMapping, []string{})
	assert.Empty(t, profile)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "Poligny", CellString("Poligny"))
	assert.Equal(t, "48455", CellString(float64(48455)))
	assert.Equal(t, "46.837", CellString(46.837))
	assert.Equal(t, "true", CellString(true))
	assert.Equal(t, "7", CellString(7))
}

func TestProfileGetString(t *testing.T) {
	p := Profile{
		{Label: "Latitude", Value: 46.837},
		{Label: "Email", Value: nil},
	}
	assert.Equal(t, "46.837", p.GetString("Latitude"))
	assert.Equal(t, "", p.GetString("Email"))
	assert.Equal(t, NotAvailable, p.GetString("Pays"))
}

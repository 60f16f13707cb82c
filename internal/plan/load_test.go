package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planDoc = `{
  "defaultPlanId": "semana-base",
  "plans": [
    {
      "id": "semana-base",
      "fallbackProteinId": "chicken",
      "proteinRotation": [
        {"id": "wk-a", "proteinId": "chicken", "label": "Week A"},
        {"id": "wk-b", "proteinId": "beef", "label": "Week B"}
      ],
      "template": {
        "days": [
          {"slots": [{"time": "almoco", "items": [{"mealId": "week-protein", "servings": 2}]}]},
          {"slots": [{"time": "jantar", "mealId": "rice"}]}
        ]
      }
    }
  ]
}`

const mealsDoc = `[
  {"id": "chicken", "name": "Frango grelhado", "ingredients": [{"name": "chicken breast", "unit": "g", "quantity": 150}]},
  {"id": "rice", "name": "Arroz", "ingredients": [{"name": "arroz", "unit": "g", "quantity": 80}]}
]`

func writeDataDir(t *testing.T, planJSON, mealsJSON string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PlanFile), []byte(planJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MealsFile), []byte(mealsJSON), 0o600))
	return dir
}

func TestLoadSources(t *testing.T) {
	dir := writeDataDir(t, planDoc, mealsDoc)

	src, err := LoadSources(dir)
	require.NoError(t, err)

	require.Len(t, src.Catalog.Plans, 1)
	p := src.Catalog.Plans[0]
	assert.Equal(t, "semana-base", p.ID)
	assert.Len(t, p.Template.Days, 2)

	// Legacy slot shape normalized at decode time.
	legacy := p.Template.Days[1].Slots[0]
	require.Len(t, legacy.Items, 1)
	assert.Equal(t, "rice", legacy.Items[0].MealRef.ID)
	assert.Equal(t, 1.0, legacy.Items[0].Servings)

	byID := src.MealsByID()
	assert.Equal(t, "Frango grelhado", byID["chicken"].Name)
}

func TestLoadSourcesFailsAsAUnit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PlanFile), []byte(planDoc), 0o600))
	// meals.json missing

	_, err := LoadSources(dir)
	assert.Error(t, err)
}

func TestLoadSourcesRejectsMalformedJSON(t *testing.T) {
	dir := writeDataDir(t, `{"plans": [`, mealsDoc)

	_, err := LoadSources(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), PlanFile)
}

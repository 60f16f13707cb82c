// Package plan selects the active meal plan from the catalog and resolves
// the week-by-week protein rotation.
package plan

import (
	"fmt"

	"github.com/csiqueirasilva/diet-helper/internal/model"
)

// Resolve picks the active plan: the one matching the catalog's default
// plan id, else the first plan, else none.
func Resolve(catalog model.PlanCatalog) (model.Plan, bool) {
	if len(catalog.Plans) == 0 {
		return model.Plan{}, false
	}
	for _, p := range catalog.Plans {
		if p.ID == catalog.DefaultPlanID {
			return p, true
		}
	}
	return catalog.Plans[0], true
}

// WeekChoice is the protein decision for one week of the horizon.
type WeekChoice struct {
	ProteinID string
	Label     string
}

// WeekProtein maps an absolute week index to the rotation entry for that
// week, wrapping through the rotation list. An empty rotation, or an entry
// without a protein id, falls back to fallbackProteinID. A missing
// fallback yields an empty protein id; downstream resolution surfaces the
// raw id rather than failing.
func WeekProtein(weekIndex int, rotation []model.RotationEntry, fallbackProteinID string) WeekChoice {
	label := fmt.Sprintf("Semana %d", weekIndex+1)
	if len(rotation) == 0 {
		return WeekChoice{ProteinID: fallbackProteinID, Label: label}
	}

	entry := rotation[weekIndex%len(rotation)]
	proteinID := entry.ProteinID
	if proteinID == "" {
		proteinID = fallbackProteinID
	}
	switch {
	case entry.Label != "":
		label = entry.Label
	case entry.ID != "":
		label = entry.ID
	}
	return WeekChoice{ProteinID: proteinID, Label: label}
}

// MealIndex builds the id lookup for the meal catalog. On duplicate ids
// the last entry wins.
func MealIndex(meals []model.Meal) map[string]model.Meal {
	byID := make(map[string]model.Meal, len(meals))
	for _, meal := range meals {
		byID[meal.ID] = meal
	}
	return byID
}

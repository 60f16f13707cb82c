package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	appLog "github.com/csiqueirasilva/diet-helper/internal/log"
	"github.com/csiqueirasilva/diet-helper/internal/model"
)

// Source document file names, relative to the data directory.
const (
	PlanFile  = "meal-plan.json"
	MealsFile = "meals.json"
)

// Sources bundles the loaded source documents. The engine is only ever run
// against a fully loaded set; a failure on any document fails the load as
// a whole.
type Sources struct {
	Catalog model.PlanCatalog
	Meals   []model.Meal
}

// MealsByID returns the id lookup for the loaded meal catalog.
func (s *Sources) MealsByID() map[string]model.Meal {
	return MealIndex(s.Meals)
}

// LoadSources reads the plan and meal catalogs from dataDir. There is no
// partial-input mode: the first failure aborts the load.
func LoadSources(dataDir string) (*Sources, error) {
	var src Sources

	if err := readJSON(filepath.Join(dataDir, PlanFile), &src.Catalog); err != nil {
		return nil, fmt.Errorf("load plan catalog: %w", err)
	}
	if err := readJSON(filepath.Join(dataDir, MealsFile), &src.Meals); err != nil {
		return nil, fmt.Errorf("load meal catalog: %w", err)
	}

	// Template cycling runs by template length, independent of the 7-day
	// week. When the length is not a multiple of 7 the weekday/template
	// alignment drifts week over week; that is accepted behavior, but
	// worth surfacing once at load time.
	if p, ok := Resolve(src.Catalog); ok {
		if n := len(p.Template.Days); n > 0 && n%7 != 0 {
			appLog.Info("template length is not a multiple of 7; weekday alignment drifts across weeks",
				"plan", p.ID,
				"template_days", n,
			)
		}
	}

	appLog.Info("source documents loaded",
		"data_dir", dataDir,
		"plan_count", len(src.Catalog.Plans),
		"meal_count", len(src.Meals),
	)

	return &src, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

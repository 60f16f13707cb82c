package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csiqueirasilva/diet-helper/internal/model"
)

func testCatalog() model.PlanCatalog {
	return model.PlanCatalog{
		DefaultPlanID: "semana-base",
		Plans: []model.Plan{{
			ID:                "semana-base",
			FallbackProteinID: "chicken",
			ProteinRotation:   testRotation(),
			Template:          model.Template{Days: rotatingTemplate(7, 2)},
		}},
	}
}

func testMealList() []model.Meal {
	meals := testMeals()
	out := make([]model.Meal, 0, len(meals))
	for _, id := range []string{"chicken", "beef", "rice"} {
		out = append(out, meals[id])
	}
	return out
}

func TestBuildFullDerivation(t *testing.T) {
	res := Build(BuildInput{
		Catalog:               testCatalog(),
		Meals:                 testMealList(),
		Today:                 day(t, "2024-01-09"), // a Tuesday
		AnchorInput:           "2024-01-07",
		HorizonDays:           56,
		ShoppingFrequencyDays: 7,
		PrepTasks:             map[string][]string{"domingo": {"Arroz"}},
	})

	require.True(t, res.PlanFound)
	assert.Equal(t, "2024-01-07", formatKey(res.Anchor))
	assert.Equal(t, 56, res.HorizonDays)
	assert.Len(t, res.Days, 56)
	assert.Len(t, res.Weeks, 8)
	assert.NotEmpty(t, res.Prep)
	assert.NotEmpty(t, res.Events)

	assert.Equal(t, 0, res.CurrentWeekIndex)
	assert.Equal(t, "2024-01-14", formatKey(res.NextShoppingDate))

	week, ok := res.Week(0)
	require.True(t, ok)
	assert.Equal(t, "Week A", week.Label)

	_, ok = res.Week(8)
	assert.False(t, ok)

	// Events come out date-ordered.
	for i := 1; i < len(res.Events); i++ {
		assert.False(t, res.Events[i].Date.Before(res.Events[i-1].Date))
	}
}

func TestBuildMalformedAnchorFallsBackToSunday(t *testing.T) {
	res := Build(BuildInput{
		Catalog:     testCatalog(),
		Meals:       testMealList(),
		Today:       day(t, "2024-01-10"), // a Wednesday
		AnchorInput: "not-a-date",
		HorizonDays: 56,
	})

	assert.Equal(t, "2024-01-07", formatKey(res.Anchor))
}

func TestBuildShoppingAnchorOverride(t *testing.T) {
	res := Build(BuildInput{
		Catalog:               testCatalog(),
		Meals:                 testMealList(),
		Today:                 day(t, "2024-01-09"),
		AnchorInput:           "2024-01-07",
		HorizonDays:           56,
		ShoppingFrequencyDays: 7,
		ShoppingAnchorInput:   "2024-01-06",
	})

	// Cycle counted from the configured Saturday, not the anchor Sunday.
	assert.Equal(t, "2024-01-13", formatKey(res.NextShoppingDate))
}

func TestBuildEmptyCatalogDegradesToEmptyOutputs(t *testing.T) {
	res := Build(BuildInput{
		Today:       day(t, "2024-01-09"),
		HorizonDays: 56,
	})

	assert.False(t, res.PlanFound)
	assert.Equal(t, "2024-01-07", formatKey(res.Anchor))
	assert.Empty(t, res.Days)
	assert.Empty(t, res.Weeks)
	assert.Empty(t, res.Prep)
	assert.Empty(t, res.Events)
}

func TestBuildEmptyTemplateDegradesToEmptyOutputs(t *testing.T) {
	catalog := testCatalog()
	catalog.Plans[0].Template.Days = nil

	res := Build(BuildInput{
		Catalog:     catalog,
		Meals:       testMealList(),
		Today:       day(t, "2024-01-09"),
		HorizonDays: 56,
	})

	assert.True(t, res.PlanFound)
	assert.Empty(t, res.Days)
	assert.Empty(t, res.Events)
}

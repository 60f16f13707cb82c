package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csiqueirasilva/diet-helper/internal/model"
)

// scheduleDay wraps resolved items into a single-slot ScheduleDay.
func scheduleDay(items ...model.ResolvedItem) model.ScheduleDay {
	return model.ScheduleDay{
		Slots: []model.ResolvedSlot{{Time: "almoco", Items: items}},
	}
}

func TestComputeShoppingListScalesByServings(t *testing.T) {
	days := []model.ScheduleDay{
		scheduleDay(model.ResolvedItem{MealID: "chicken", MealName: "Frango grelhado", Servings: 2}),
	}

	items := ComputeShoppingList(days, testMeals())
	require.Len(t, items, 1)
	assert.Equal(t, "chicken breast", items[0].Name)
	assert.Equal(t, "g", items[0].Unit)
	assert.Equal(t, 300.0, items[0].Total)
	assert.Equal(t, []string{"Frango grelhado"}, items[0].Sources)
}

func TestComputeShoppingListDeduplicatesSources(t *testing.T) {
	days := []model.ScheduleDay{
		scheduleDay(
			model.ResolvedItem{MealID: "chicken", Servings: 1},
			model.ResolvedItem{MealID: "chicken", Servings: 1},
		),
		scheduleDay(model.ResolvedItem{MealID: "chicken", Servings: 2}),
	}

	items := ComputeShoppingList(days, testMeals())
	require.Len(t, items, 1)
	assert.Equal(t, 600.0, items[0].Total)
	// Three placements, one source name.
	assert.Equal(t, []string{"Frango grelhado"}, items[0].Sources)
}

func TestComputeShoppingListKeysByNameAndUnit(t *testing.T) {
	meals := map[string]model.Meal{
		"soup": {
			ID:   "soup",
			Name: "Sopa",
			Ingredients: []model.Ingredient{
				{Name: "cenoura", Unit: "g", Quantity: 100},
				{Name: "cenoura", Unit: "un", Quantity: 2},
			},
		},
	}
	days := []model.ScheduleDay{
		scheduleDay(model.ResolvedItem{MealID: "soup", Servings: 1}),
	}

	items := ComputeShoppingList(days, meals)
	// Same name, distinct units: never merged.
	require.Len(t, items, 2)
	assert.Equal(t, "g", items[0].Unit)
	assert.Equal(t, "un", items[1].Unit)
}

func TestComputeShoppingListIsOrderInsensitive(t *testing.T) {
	forward := []model.ScheduleDay{
		scheduleDay(model.ResolvedItem{MealID: "rice", Servings: 1}),
		scheduleDay(model.ResolvedItem{MealID: "chicken", Servings: 2}),
		scheduleDay(model.ResolvedItem{MealID: "beef", Servings: 1}),
	}
	backward := []model.ScheduleDay{forward[2], forward[1], forward[0]}

	a := ComputeShoppingList(forward, testMeals())
	b := ComputeShoppingList(backward, testMeals())
	assert.Equal(t, a, b)

	// Idempotent: a second pass over the same days is identical.
	assert.Equal(t, a, ComputeShoppingList(forward, testMeals()))
}

func TestComputeShoppingListSortsByName(t *testing.T) {
	days := []model.ScheduleDay{
		scheduleDay(
			model.ResolvedItem{MealID: "rice", Servings: 1},
			model.ResolvedItem{MealID: "beef", Servings: 1},
			model.ResolvedItem{MealID: "chicken", Servings: 1},
		),
	}

	items := ComputeShoppingList(days, testMeals())
	require.Len(t, items, 3)
	assert.Equal(t, "acem", items[0].Name)
	assert.Equal(t, "arroz", items[1].Name)
	assert.Equal(t, "chicken breast", items[2].Name)
}

func TestComputeShoppingListSkipsUnknownMeals(t *testing.T) {
	days := []model.ScheduleDay{
		scheduleDay(
			model.ResolvedItem{MealID: "ghost", Servings: 3},
			model.ResolvedItem{MealID: "rice", Servings: 1},
		),
	}

	items := ComputeShoppingList(days, testMeals())
	require.Len(t, items, 1)
	assert.Equal(t, "arroz", items[0].Name)
}

func TestFormatShoppingLines(t *testing.T) {
	items := []model.ShoppingItem{
		{Name: "arroz", Unit: "g", Total: 160, Sources: []string{"Arroz"}},
		{Name: "chicken breast", Unit: "g", Total: 300.5, Sources: []string{"Frango grelhado", "Salada"}},
	}

	lines := FormatShoppingLines(items)
	assert.Equal(t, []string{
		"arroz: 160 g (Arroz)",
		"chicken breast: 300.5 g (Frango grelhado, Salada)",
	}, lines)
}

func TestWeekSegments(t *testing.T) {
	days := Expand(ExpandConfig{
		Anchor:            day(t, "2024-01-07"),
		HorizonDays:       56,
		TemplateDays:      rotatingTemplate(7, 2),
		MealsByID:         testMeals(),
		Rotation:          testRotation(),
		FallbackProteinID: "chicken",
	})

	weeks := WeekSegments(days, day(t, "2024-01-07"), testMeals())
	require.Len(t, weeks, 8)

	first := weeks[0]
	assert.Equal(t, 0, first.WeekIndex)
	assert.Equal(t, "Week A", first.Label)
	assert.Equal(t, "2024-01-07", formatKey(first.Start))
	assert.Len(t, first.Days, 7)

	// Week 0 is all chicken: 7 days * 2 servings * 150 g.
	require.Len(t, first.ShoppingList, 1)
	assert.Equal(t, 2100.0, first.ShoppingList[0].Total)

	// Week 1 is all beef.
	second := weeks[1]
	assert.Equal(t, "2024-01-14", formatKey(second.Start))
	require.Len(t, second.ShoppingList, 1)
	assert.Equal(t, "acem", second.ShoppingList[0].Name)
}

func TestCurrentWeekIndex(t *testing.T) {
	anchor := day(t, "2024-01-07")

	assert.Equal(t, 0, CurrentWeekIndex(day(t, "2024-01-07"), anchor))
	assert.Equal(t, 0, CurrentWeekIndex(day(t, "2024-01-13"), anchor))
	assert.Equal(t, 1, CurrentWeekIndex(day(t, "2024-01-14"), anchor))
	assert.Equal(t, 4, CurrentWeekIndex(day(t, "2024-02-05"), anchor))
	// Today before the anchor clamps to week 0.
	assert.Equal(t, 0, CurrentWeekIndex(day(t, "2023-12-25"), anchor))
}

func TestNextShoppingDate(t *testing.T) {
	anchor := day(t, "2024-01-06")

	testCases := []struct {
		name     string
		today    string
		freq     int
		expected string
	}{
		{"today equals anchor", "2024-01-06", 7, "2024-01-06"},
		{"today before anchor", "2024-01-01", 7, "2024-01-06"},
		{"one day past", "2024-01-07", 7, "2024-01-13"},
		{"exactly one cycle", "2024-01-13", 7, "2024-01-13"},
		{"far future", "2024-06-20", 7, "2024-06-22"},
		{"biweekly", "2024-01-10", 14, "2024-01-20"},
		{"zero frequency defaults to weekly", "2024-01-07", 0, "2024-01-13"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextShoppingDate(day(t, tc.today), anchor, tc.freq)
			assert.Equal(t, tc.expected, formatKey(got))
		})
	}
}

package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/model"
)

// ComputeShoppingList aggregates ingredient quantities across all meal
// placements in the given days, grouped by (name, unit). Quantities are
// scaled by servings; each key collects the distinct display names of the
// meals that contributed to it. Items referencing unknown meals, or meals
// without ingredients, are skipped.
//
// The result is sorted by ingredient name under pt-BR collation (unit as
// tie-break), so permuting the input days or items never changes the
// output.
func ComputeShoppingList(days []model.ScheduleDay, mealsByID map[string]model.Meal) []model.ShoppingItem {
	items := make(map[string]*model.ShoppingItem)

	for _, day := range days {
		for _, slot := range day.Slots {
			for _, item := range slot.Items {
				meal, ok := mealsByID[item.MealID]
				if !ok || len(meal.Ingredients) == 0 {
					continue
				}
				servings := item.Servings
				if servings == 0 {
					servings = 1
				}

				for _, ing := range meal.Ingredients {
					key := ing.Name + "|" + ing.Unit
					entry, ok := items[key]
					if !ok {
						entry = &model.ShoppingItem{Name: ing.Name, Unit: ing.Unit}
						items[key] = entry
					}
					entry.Total += ing.Quantity * servings
					if !containsString(entry.Sources, meal.Name) {
						entry.Sources = append(entry.Sources, meal.Name)
					}
				}
			}
		}
	}

	out := make([]model.ShoppingItem, 0, len(items))
	for _, entry := range items {
		out = append(out, *entry)
	}

	// A fresh collator per call: collate.Collator is not safe for
	// concurrent use.
	coll := collate.New(language.BrazilianPortuguese)
	sort.Slice(out, func(i, j int) bool {
		if c := coll.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].Unit < out[j].Unit
	})

	return out
}

// FormatShoppingLines renders a shopping list in the exchange format
// "name: total unit (sources)", one line per item.
func FormatShoppingLines(items []model.ShoppingItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %s %s (%s)",
			item.Name,
			strconv.FormatFloat(item.Total, 'f', -1, 64),
			item.Unit,
			strings.Join(item.Sources, ", "),
		))
	}
	return lines
}

// WeekSegment groups the schedule days of one horizon week together with
// that week's shopping list.
type WeekSegment struct {
	WeekIndex    int
	Label        string
	Start        time.Time
	Days         []model.ScheduleDay
	ShoppingList []model.ShoppingItem
}

// WeekSegments splits the expanded schedule into consecutive weeks and
// computes each week's shopping list independently. The whole-horizon
// shopping view is exactly the union of these per-week lists.
func WeekSegments(days []model.ScheduleDay, anchor time.Time, mealsByID map[string]model.Meal) []WeekSegment {
	anchor = dates.StartOfDay(anchor)
	var segs []WeekSegment

	for _, day := range days {
		if len(segs) == 0 || segs[len(segs)-1].WeekIndex != day.WeekIndex {
			segs = append(segs, WeekSegment{
				WeekIndex: day.WeekIndex,
				Label:     day.WeekLabel,
				Start:     dates.AddDays(anchor, day.WeekIndex*7),
			})
		}
		seg := &segs[len(segs)-1]
		seg.Days = append(seg.Days, day)
	}

	for i := range segs {
		segs[i].ShoppingList = ComputeShoppingList(segs[i].Days, mealsByID)
	}

	return segs
}

// CurrentWeekIndex locates today's week within the horizon, clamped to the
// first week when today precedes the anchor.
func CurrentWeekIndex(today, anchor time.Time) int {
	idx := dates.DayDifference(today, anchor) / 7
	if idx < 0 {
		idx = 0
	}
	return idx
}

// NextShoppingDate computes the first shopping day on or after today, as
// anchor + ceil((today-anchor)/frequency)*frequency. The closed form
// replaces an iterative catch-up so a stale anchor costs nothing.
func NextShoppingDate(today, anchor time.Time, frequencyDays int) time.Time {
	if frequencyDays <= 0 {
		frequencyDays = 7
	}
	today = dates.StartOfDay(today)
	anchor = dates.StartOfDay(anchor)

	diff := dates.DayDifference(today, anchor)
	if diff <= 0 {
		return anchor
	}
	cycles := (diff + frequencyDays - 1) / frequencyDays
	return dates.AddDays(anchor, cycles*frequencyDays)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/model"
)

// Per-category ordering weights. Among events of the same date the order
// value is compared first, then the title, then the id, which makes the
// sort a total order.
const (
	OrderPrep     = 0.25
	OrderShopping = 0.5
	OrderLunch    = 1
	OrderMeal     = 1.5
	OrderDinner   = 2
)

// Offset from a week's start to its designated shopping day (Saturday
// when the week starts on Sunday).
const shoppingDayOffset = 6

// categoryForSlot classifies a slot by a case-insensitive keyword match
// on its time label. "marmita" wins over "almoco" so a label carrying
// both stays a packed lunch.
func categoryForSlot(timeLabel string) (model.Category, float64) {
	label := strings.ToLower(timeLabel)
	switch {
	case strings.Contains(label, "marmita"):
		return model.CategoryPackedLunch, OrderLunch
	case strings.Contains(label, "almoco"):
		return model.CategoryLunch, OrderLunch
	case strings.Contains(label, "jantar"):
		return model.CategoryDinner, OrderDinner
	}
	return model.CategoryMeal, OrderMeal
}

// Materialize flattens the expanded schedule, the per-week shopping lists
// and the prep blocks into a single ordered list of calendar events: one
// event per non-empty slot per day, one shopping event per week on the
// week's shopping day, one event per prep block. Inputs are not mutated.
func Materialize(days []model.ScheduleDay, weeks []WeekSegment, prep []model.PrepBlock) []model.Event {
	var all []model.Event

	for _, day := range days {
		key := dates.FormatDayKey(day.Date)
		for idx, slot := range day.Slots {
			if len(slot.Items) == 0 {
				continue
			}
			names := make([]string, 0, len(slot.Items))
			for _, item := range slot.Items {
				names = append(names, item.MealName)
			}
			category, order := categoryForSlot(slot.Time)

			all = append(all, model.Event{
				ID:        fmt.Sprintf("%s-%d", key, idx),
				Title:     strings.Join(names, " + "),
				Date:      day.Date,
				Category:  category,
				Order:     order,
				SlotTime:  slot.Time,
				WeekLabel: day.WeekLabel,
				Items:     slot.Items,
			})
		}
	}

	for _, week := range weeks {
		shoppingDate := dates.AddDays(week.Start, shoppingDayOffset)
		all = append(all, model.Event{
			ID:        dates.FormatDayKey(shoppingDate) + "-shopping",
			Title:     fmt.Sprintf("Compras (%s)", week.Label),
			Date:      shoppingDate,
			Category:  model.CategoryShopping,
			Order:     OrderShopping,
			WeekLabel: week.Label,
			Shopping:  week.ShoppingList,
		})
	}

	for idx, block := range prep {
		covers := block.Covers
		all = append(all, model.Event{
			ID:       fmt.Sprintf("%s-prep-%d", dates.FormatDayKey(block.Date), idx),
			Title:    block.Label,
			Date:     block.Date,
			Category: model.CategoryPrep,
			Order:    OrderPrep,
			Tasks:    block.Tasks,
			Covers:   &covers,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})

	return all
}

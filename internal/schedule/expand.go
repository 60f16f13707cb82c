// Package schedule contains the pure derivation engine: it expands the
// weekly template over a horizon of civil days, aggregates shopping lists
// per week, generates recurring prep blocks, and flattens everything into
// an ordered list of calendar events. No function here retains state or
// performs I/O.
package schedule

import (
	"time"

	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/model"
	"github.com/csiqueirasilva/diet-helper/internal/plan"
)

// Horizon bounds. A horizon shorter than MinHorizonDays would not cover a
// full rotation cycle twice, so it is clamped up; whatever remains is
// rounded up to whole weeks.
const (
	DefaultHorizonDays = 365
	MinHorizonDays     = 56
)

// NormalizeHorizon clamps and week-aligns a configured horizon.
func NormalizeHorizon(days int) int {
	if days <= 0 {
		days = DefaultHorizonDays
	}
	if days < MinHorizonDays {
		days = MinHorizonDays
	}
	weeks := (days + 6) / 7
	return weeks * 7
}

// ExpandConfig carries the inputs of one schedule expansion.
type ExpandConfig struct {
	// Anchor is the first day of the horizon; normalized to start of day.
	Anchor time.Time

	// HorizonDays is the number of days to materialize. Callers pass a
	// value already normalized via NormalizeHorizon.
	HorizonDays int

	TemplateDays      []model.TemplateDay
	MealsByID         map[string]model.Meal
	Rotation          []model.RotationEntry
	FallbackProteinID string
}

// Expand materializes one ScheduleDay per horizon day.
//
// The template cycles by its own length (offset mod len(templateDays)),
// independent of the 7-day week index. If the template length does not
// evenly divide 7, the weekday a template position lands on drifts week
// over week; this mirrors the catalog's documented behavior and is not
// corrected here.
//
// Rotating meal references resolve against the week's protein; ids that
// are missing from the meal catalog keep the raw id as their display name.
// An empty template yields an empty schedule.
func Expand(cfg ExpandConfig) []model.ScheduleDay {
	if len(cfg.TemplateDays) == 0 || cfg.HorizonDays <= 0 {
		return nil
	}

	anchor := dates.StartOfDay(cfg.Anchor)
	out := make([]model.ScheduleDay, 0, cfg.HorizonDays)

	for offset := 0; offset < cfg.HorizonDays; offset++ {
		weekIndex := offset / 7
		choice := plan.WeekProtein(weekIndex, cfg.Rotation, cfg.FallbackProteinID)
		templateDay := cfg.TemplateDays[offset%len(cfg.TemplateDays)]

		day := model.ScheduleDay{
			Date:      dates.AddDays(anchor, offset),
			WeekIndex: weekIndex,
			WeekLabel: choice.Label,
			Slots:     make([]model.ResolvedSlot, 0, len(templateDay.Slots)),
		}

		for _, slot := range templateDay.Slots {
			resolved := model.ResolvedSlot{
				Time:  slot.Time,
				Items: make([]model.ResolvedItem, 0, len(slot.Items)),
			}
			for _, item := range slot.Items {
				resolved.Items = append(resolved.Items, resolveItem(item, choice, cfg.MealsByID))
			}
			day.Slots = append(day.Slots, resolved)
		}

		out = append(out, day)
	}

	return out
}

func resolveItem(item model.SlotItem, choice plan.WeekChoice, mealsByID map[string]model.Meal) model.ResolvedItem {
	id := item.MealRef.ID
	if item.MealRef.Rotating {
		id = choice.ProteinID
	}

	name := id
	if meal, ok := mealsByID[id]; ok {
		name = meal.Name
	}

	servings := item.Servings
	if servings == 0 {
		servings = 1
	}

	return model.ResolvedItem{MealID: id, MealName: name, Servings: servings}
}

package schedule

import (
	"time"

	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/model"
	"github.com/csiqueirasilva/diet-helper/internal/plan"
)

// BuildInput carries everything one full derivation needs. Today and the
// anchor input are supplied by the caller so the derivation itself stays a
// pure function of its arguments.
type BuildInput struct {
	Catalog model.PlanCatalog
	Meals   []model.Meal

	// Today is the reference day for "current week" and the next
	// shopping date.
	Today time.Time

	// AnchorInput is a user-supplied YYYY-MM-DD literal. Empty or
	// malformed values fall back to the most recent Sunday from Today.
	AnchorInput string

	HorizonDays           int
	ShoppingFrequencyDays int

	// ShoppingAnchorInput, when parseable, anchors the shopping cycle;
	// otherwise the schedule anchor is used.
	ShoppingAnchorInput string

	// PrepTasks is the static task catalog keyed by prep-block kind.
	PrepTasks map[string][]string
}

// Result is a complete derived snapshot. Every field is recomputed from
// scratch on each Build call; nothing is mutated in place.
type Result struct {
	Plan      model.Plan
	PlanFound bool

	Anchor      time.Time
	HorizonDays int

	Days   []model.ScheduleDay
	Weeks  []WeekSegment
	Prep   []model.PrepBlock
	Events []model.Event

	CurrentWeekIndex int
	NextShoppingDate time.Time
}

// Build runs the whole derivation: resolve the plan, expand the schedule,
// segment it into weeks with shopping lists, generate prep blocks, and
// materialize the event list. Missing plans or an empty template degrade
// to an empty schedule, which in turn empties every downstream artifact.
func Build(in BuildInput) Result {
	today := dates.StartOfDay(in.Today)

	anchor, ok := dates.ParseDayKey(in.AnchorInput)
	if !ok {
		anchor = dates.MostRecentSunday(today)
	}

	res := Result{
		Anchor:      anchor,
		HorizonDays: NormalizeHorizon(in.HorizonDays),
	}

	res.Plan, res.PlanFound = plan.Resolve(in.Catalog)
	mealsByID := plan.MealIndex(in.Meals)

	if res.PlanFound {
		res.Days = Expand(ExpandConfig{
			Anchor:            anchor,
			HorizonDays:       res.HorizonDays,
			TemplateDays:      res.Plan.Template.Days,
			MealsByID:         mealsByID,
			Rotation:          res.Plan.ProteinRotation,
			FallbackProteinID: res.Plan.FallbackProteinID,
		})
	}

	res.CurrentWeekIndex = CurrentWeekIndex(today, anchor)

	shoppingAnchor := anchor
	if parsed, ok := dates.ParseDayKey(in.ShoppingAnchorInput); ok {
		shoppingAnchor = parsed
	}
	res.NextShoppingDate = NextShoppingDate(today, shoppingAnchor, in.ShoppingFrequencyDays)

	if len(res.Days) == 0 {
		return res
	}

	res.Weeks = WeekSegments(res.Days, anchor, mealsByID)
	res.Prep = PrepBlocks(anchor, res.HorizonDays, in.PrepTasks)
	res.Events = Materialize(res.Days, res.Weeks, res.Prep)

	return res
}

// Week returns the segment with the given week index, or false when the
// index falls outside the horizon.
func (r *Result) Week(index int) (WeekSegment, bool) {
	for _, w := range r.Weeks {
		if w.WeekIndex == index {
			return w, true
		}
	}
	return WeekSegment{}, false
}

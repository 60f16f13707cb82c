package schedule

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/csiqueirasilva/diet-helper/internal/config"
	"github.com/csiqueirasilva/diet-helper/internal/dates"
	appLog "github.com/csiqueirasilva/diet-helper/internal/log"
	"github.com/csiqueirasilva/diet-helper/internal/model"
)

// Prep block labels, matching the catalog consumed by the UI.
const (
	prepLabelSunday    = "Preparo de domingo"
	prepLabelWednesday = "Preparo de quarta"
)

// PrepBlocks derives the recurring prep reminders for the horizon: one
// Sunday-kind block at each week start covering the next 3 days, and one
// Wednesday-kind block at week start + 3 covering the 3 days after that,
// emitted only while still inside the horizon. Task lists come from the
// configured catalog keyed by block kind; they are static configuration,
// not derived from the schedule.
func PrepBlocks(anchor time.Time, horizonDays int, tasks map[string][]string) []model.PrepBlock {
	if horizonDays <= 0 {
		return nil
	}

	anchor = dates.StartOfDay(anchor)
	horizonEnd := dates.AddDays(anchor, horizonDays-1)

	blocks := make([]model.PrepBlock, 0, 2*(horizonDays/7+1))
	for _, weekStart := range weeklySeries(anchor, horizonEnd) {
		blocks = append(blocks, prepBlock(config.PrepKindSunday, prepLabelSunday, weekStart, tasks))

		mid := dates.AddDays(weekStart, 3)
		if !mid.After(horizonEnd) {
			blocks = append(blocks, prepBlock(config.PrepKindWednesday, prepLabelWednesday, mid, tasks))
		}
	}

	return blocks
}

func prepBlock(kind, label string, date time.Time, tasks map[string][]string) model.PrepBlock {
	return model.PrepBlock{
		Kind:  kind,
		Label: label,
		Date:  date,
		Covers: model.DateRange{
			Start: date,
			End:   dates.AddDays(date, 3),
		},
		Tasks: tasks[kind],
	}
}

// weeklySeries returns start, start+7d, ... up to and including until.
func weeklySeries(start, until time.Time) []time.Time {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: start,
		Until:   until,
	})
	if err != nil {
		// Should not happen for a plain weekly rule; degrade to fixed
		// stepping rather than dropping the blocks.
		appLog.Error("prep: weekly rule construction failed, stepping manually", err,
			"start", dates.FormatDayKey(start),
			"until", dates.FormatDayKey(until),
		)
		var out []time.Time
		for p := start; !p.After(until); p = dates.AddDays(p, 7) {
			out = append(out, p)
		}
		return out
	}
	return rule.All()
}

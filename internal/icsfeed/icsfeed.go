// Package icsfeed renders the materialized event list as an iCalendar
// feed, so the plan can be subscribed to from any calendar client.
package icsfeed

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/model"
	"github.com/csiqueirasilva/diet-helper/internal/schedule"
)

const (
	productID = "-//diet-helper//plancal//PT"
	uidSuffix = "@diet-helper"
)

// Render serializes the events as all-day VEVENTs. now is used for
// DTSTAMP/CREATED so the output is reproducible in tests.
func Render(events []model.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID + uidSuffix)
		ve.SetDtStampTime(now)
		ve.SetCreatedTime(now)
		ve.SetAllDayStartAt(dates.StartOfDay(ev.Date))
		ve.SetAllDayEndAt(dates.AddDays(dates.StartOfDay(ev.Date), 1))
		ve.SetSummary(ev.Title)
		ve.SetProperty(ical.ComponentPropertyCategories, string(ev.Category))

		if desc := description(ev); desc != "" {
			ve.SetDescription(desc)
		}
	}

	return cal.Serialize()
}

// description carries the on-demand detail of shopping and prep events
// into the feed, since a calendar client has no modal to open.
func description(ev model.Event) string {
	switch ev.Category {
	case model.CategoryShopping:
		return strings.Join(schedule.FormatShoppingLines(ev.Shopping), "\n")
	case model.CategoryPrep:
		var lines []string
		if ev.Covers != nil {
			lines = append(lines, "Cobre "+dates.FormatDayRange(ev.Covers.Start, ev.Covers.End))
		}
		lines = append(lines, ev.Tasks...)
		return strings.Join(lines, "\n")
	}
	return ""
}

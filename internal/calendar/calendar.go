// Package calendar renders events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/osse101/liveops/internal/domain"
)

// Feed identity
const (
	ProductID   = "-//liveops//events//EN"
	DefaultName = "Live events"
	ContentType = "text/calendar; charset=utf-8"
	UIDDomain   = "liveops"
)

// Render builds a calendar from annotated views. Instants are written in UTC;
// the display zone is advertised through X-WR-TIMEZONE and repeated in each
// description. Duplicate ids keep their first occurrence.
func Render(name string, views []domain.EventView, loc *time.Location, now time.Time) string {
	if name == "" {
		name = DefaultName
	}
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(loc.String())

	seen := make(map[string]bool, len(views))
	for _, v := range views {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true

		e := cal.AddEvent(v.ID + "@" + UIDDomain)
		e.SetDtStampTime(now.UTC())
		if !v.CreatedAt.IsZero() {
			e.SetCreatedTime(v.CreatedAt.UTC())
		}
		if !v.UpdatedAt.IsZero() {
			e.SetModifiedAt(v.UpdatedAt.UTC())
		}
		e.SetStartAt(v.StartTime.UTC())
		e.SetEndAt(v.EndTime.UTC())
		e.SetSummary(v.Title)
		e.SetDescription(describe(v))
		e.AddProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(v.EventType)))
		if v.IsActive {
			e.SetStatus(ical.ObjectStatusConfirmed)
		} else {
			e.SetStatus(ical.ObjectStatusCancelled)
		}
		if v.IsRecurring && v.RecurrencePattern != "" {
			e.AddProperty(ical.ComponentPropertyRrule, strings.TrimPrefix(v.RecurrencePattern, "RRULE:"))
		}
	}
	return cal.Serialize()
}

func describe(v domain.EventView) string {
	var b strings.Builder
	if v.Description != "" {
		b.WriteString(v.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s to %s (%s)", v.LocalStart, v.LocalEnd, v.DisplayTimezone)
	if grants := v.Rewards.CompletionGrants(); len(grants) > 0 {
		b.WriteString("\nRewards:")
		for _, k := range domain.SortedKeys(grants) {
			fmt.Fprintf(&b, " %s=%d", k, grants[k])
		}
	}
	return b.String()
}

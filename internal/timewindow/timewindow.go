// Package timewindow holds the time-zone and interval math for events.
// Everything outside this package reasons in UTC instants only.
package timewindow

import (
	"fmt"
	"strings"
	"time"

	"github.com/osse101/liveops/internal/domain"
)

// DisplayLayout is the layout used for rendering instants in a display zone.
const DisplayLayout = "2006-01-02T15:04:05-07:00"

// DefaultTimezone is used when a caller names no display zone.
const DefaultTimezone = "UTC"

// WeatherBlock is the length of the window that keys weather-triggered events.
const WeatherBlock = 4 * time.Hour

// Window is a half-open interval [Start, End) in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LoadLocation resolves an IANA zone name. The empty string and "UTC" map to UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTimezone, name)
	}
	return loc, nil
}

// ToUTC reinterprets the wall clock of t in loc and returns the UTC instant.
// The location attached to t is ignored.
func ToUTC(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc).UTC()
}

// Render formats a UTC instant in the display zone.
func Render(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}

// IsBetween reports whether now lies in the closed interval [start, end].
func IsBetween(now, start, end time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// MinutesRemaining returns whole minutes until end, or 0 once end has passed.
func MinutesRemaining(now, end time.Time) int64 {
	if !end.After(now) {
		return 0
	}
	return int64(end.Sub(now) / time.Minute)
}

// DurationMinutes returns the whole minutes between start and end.
func DurationMinutes(start, end time.Time) int64 {
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Minute)
}

// Day returns the UTC calendar day containing t.
func Day(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ISOWeek returns the ISO week (Monday 00:00 UTC to the next Monday) containing t.
func ISOWeek(t time.Time) Window {
	day := Day(t).Start
	// time.Weekday: Sunday=0, ISO weeks start Monday
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Month returns the UTC calendar month containing t.
func Month(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Block returns the fixed-size UTC block of length d containing t.
func Block(t time.Time, d time.Duration) Window {
	start := t.UTC().Truncate(d)
	return Window{Start: start, End: start.Add(d)}
}

// Season maps a month to its season name. Months are grouped by 0-based index into
// quarters: {0,1,2} spring, {3,4,5} summer, {6,7,8} autumn, {9,10,11} winter.
func Season(m time.Month) string {
	switch (int(m) - 1) / 3 {
	case 0:
		return "spring"
	case 1:
		return "summer"
	case 2:
		return "autumn"
	default:
		return "winter"
	}
}

// Annotate derives display fields for e as seen at now in loc.
func Annotate(e domain.Event, now time.Time, loc *time.Location) domain.EventView {
	return domain.EventView{
		Event:                e,
		IsOngoing:            IsBetween(now, e.StartTime, e.EndTime),
		IsUpcoming:           now.Before(e.StartTime),
		DurationMinutes:      DurationMinutes(e.StartTime, e.EndTime),
		TimeRemainingMinutes: MinutesRemaining(now, e.EndTime),
		LocalStart:           Render(e.StartTime, loc),
		LocalEnd:             Render(e.EndTime, loc),
		DisplayTimezone:      loc.String(),
	}
}

package digest

import (
	"fmt"
	"time"
)

// YearsBack is how far in the past "today" is.
const YearsBack = 30

const dateKeyLayout = "20060102"

// DateKey is an 8-character YYYYMMDD calendar date, the join key across sources.
type DateKey string

// KeyOf formats t's calendar date in t's own location.
func KeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates and parses a key as midnight UTC.
func ParseDateKey(s string) (time.Time, error) {
	if len(s) != len(dateKeyLayout) {
		return time.Time{}, fmt.Errorf("date key %q: want 8 digits", s)
	}
	return time.Parse(dateKeyLayout, s)
}

// YearsBefore moves t back n years keeping wall-clock time. Feb 29 becomes
// Feb 28 when the target year is not a leap year.
func YearsBefore(t time.Time, n int) time.Time {
	y := t.Year() - n
	d := t.Day()
	if t.Month() == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, t.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// Window is the 3-day span fetched on every run: the day YearsBack years ago,
// plus one day either side so every viewer timezone is covered.
type Window struct {
	From time.Time // midnight UTC, day before
	To   time.Time // midnight UTC, day after
}

// WindowAt builds the window for an invocation at now, computed in UTC.
func WindowAt(now time.Time) Window {
	now = now.UTC()
	past := YearsBefore(now, YearsBack)
	day := time.Date(past.Year(), past.Month(), past.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		From: day.AddDate(0, 0, -1),
		To:   day.AddDate(0, 0, 1),
	}
}

// Days returns the window's dates in request order: start, start+1, end.
func (w Window) Days() []time.Time {
	return []time.Time{w.From, w.From.AddDate(0, 0, 1), w.To}
}

// Keys returns the DateKeys every Document built for this window contains.
func (w Window) Keys() []DateKey {
	days := w.Days()
	keys := make([]DateKey, 0, len(days))
	for _, d := range days {
		keys = append(keys, KeyOf(d))
	}
	return keys
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.From.Format(time.DateOnly), w.To.Format(time.DateOnly))
}

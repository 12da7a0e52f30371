package recurrence

import (
	"errors"
	"strings"
	"time"
)

// Pattern identifies the supported recurrence cadences.
type Pattern string

const (
	// PatternDaily matches every calendar day in the range.
	PatternDaily Pattern = "daily"
	// PatternWeekly matches the selected weekdays in every week.
	PatternWeekly Pattern = "weekly"
	// PatternBiweekly matches the selected weekdays in even ISO weeks only.
	PatternBiweekly Pattern = "biweekly"
	// PatternMonthly matches a fixed day of the month, without clamping.
	PatternMonthly Pattern = "monthly"
)

// ErrUnknownPattern indicates a pattern value outside the supported set.
var ErrUnknownPattern = errors.New("recurrence: unknown pattern")

// ParsePattern converts user supplied text into a Pattern.
func ParsePattern(value string) (Pattern, error) {
	switch Pattern(strings.ToLower(strings.TrimSpace(value))) {
	case PatternDaily:
		return PatternDaily, nil
	case PatternWeekly:
		return PatternWeekly, nil
	case PatternBiweekly:
		return PatternBiweekly, nil
	case PatternMonthly:
		return PatternMonthly, nil
	}
	return "", ErrUnknownPattern
}

// Rule describes a recurrence configuration for a schedule template.
//
// Weekdays is consulted only for weekly and biweekly patterns; MonthDay only
// for monthly. A weekly rule with no weekdays, or a monthly rule with a zero
// MonthDay, matches no dates at all rather than failing.
type Rule struct {
	Pattern  Pattern
	Weekdays []time.Weekday
	MonthDay int
}

// Matches reports whether the rule selects the given calendar date.
func (r Rule) Matches(d time.Time) bool {
	switch r.Pattern {
	case PatternDaily:
		return true
	case PatternWeekly:
		return r.matchesWeekday(d.Weekday())
	case PatternBiweekly:
		if !r.matchesWeekday(d.Weekday()) {
			return false
		}
		// ISO-8601 week numbering (Thursday anchored). The parity decides
		// which alternating weeks generate, so the anchoring convention is
		// load-bearing here.
		_, week := d.ISOWeek()
		return week%2 == 0
	case PatternMonthly:
		return r.MonthDay >= 1 && d.Day() == r.MonthDay
	}
	return false
}

func (r Rule) matchesWeekday(day time.Weekday) bool {
	for _, candidate := range r.Weekdays {
		if candidate == day {
			return true
		}
	}
	return false
}

// DatesBetween enumerates the matching calendar dates in [start, end],
// inclusive on both ends, in ascending order.
//
// The walk advances by calendar days (AddDate), not fixed 24h durations, so
// it stays correct across daylight-saving transitions in zoned inputs. The
// caller is expected to bound the range; the walk itself imposes no limit.
func (r Rule) DatesBetween(start, end time.Time) []time.Time {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return nil
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if r.Matches(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// Midnight truncates a timestamp to its calendar date, keeping the location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseWeekday converts a lowercase English weekday name into time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

// WeekdayName returns the lowercase English name used on the wire and in storage.
func WeekdayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

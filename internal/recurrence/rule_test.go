package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRule_DatesBetween_Daily(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: PatternDaily}
	dates := rule.DatesBetween(date(2025, time.June, 1), date(2025, time.June, 3))

	require.Equal(t, []time.Time{
		date(2025, time.June, 1),
		date(2025, time.June, 2),
		date(2025, time.June, 3),
	}, dates)
}

func TestRule_DatesBetween_Weekly(t *testing.T) {
	t.Parallel()

	// January 1st 2025 is a Wednesday.
	rule := Rule{Pattern: PatternWeekly, Weekdays: []time.Weekday{time.Monday, time.Thursday}}
	dates := rule.DatesBetween(date(2025, time.January, 1), date(2025, time.January, 31))

	require.Equal(t, []time.Time{
		date(2025, time.January, 2),
		date(2025, time.January, 6),
		date(2025, time.January, 9),
		date(2025, time.January, 13),
		date(2025, time.January, 16),
		date(2025, time.January, 20),
		date(2025, time.January, 23),
		date(2025, time.January, 27),
		date(2025, time.January, 30),
	}, dates)
}

func TestRule_DatesBetween_MonthlyWithoutClamping(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: PatternMonthly, MonthDay: 31}
	dates := rule.DatesBetween(date(2025, time.February, 1), date(2025, time.April, 30))

	// February and April have no 31st; the date is skipped, never rolled over.
	require.Equal(t, []time.Time{date(2025, time.March, 31)}, dates)
}

func TestRule_DatesBetween_BiweeklyISOParity(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: PatternBiweekly, Weekdays: []time.Weekday{time.Friday}}

	// Eight weeks starting 2025-01-01. Fridays fall on Jan 3 (ISO week 1),
	// Jan 10 (2), Jan 17 (3), Jan 24 (4), Jan 31 (5), Feb 7 (6), Feb 14 (7)
	// and Feb 21 (8); only even ISO weeks generate.
	dates := rule.DatesBetween(date(2025, time.January, 1), date(2025, time.February, 25))

	require.Equal(t, []time.Time{
		date(2025, time.January, 10),
		date(2025, time.January, 24),
		date(2025, time.February, 7),
		date(2025, time.February, 21),
	}, dates)
}

func TestRule_DatesBetween_BiweeklyAcrossYearBoundary(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: PatternBiweekly, Weekdays: []time.Weekday{time.Monday}}

	// 2024-12-30 is a Monday in ISO week 1 of 2025, not week 53 of 2024. The
	// window covers the year boundary where naive week math goes wrong.
	dates := rule.DatesBetween(date(2024, time.December, 16), date(2025, time.January, 13))

	// Mondays in range: Dec 16 (ISO week 51), Dec 23 (52), Dec 30 (week 1 of
	// 2025), Jan 6 (2), Jan 13 (3).
	require.Equal(t, []time.Time{
		date(2024, time.December, 23),
		date(2025, time.January, 6),
	}, dates)
}

func TestRule_DatesBetween_InvertedRange(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: PatternDaily}
	assert.Empty(t, rule.DatesBetween(date(2025, time.May, 10), date(2025, time.May, 1)))
}

func TestRule_Matches_LenientOnMissingSelectors(t *testing.T) {
	t.Parallel()

	monday := date(2025, time.January, 6)

	// A weekly/biweekly rule with no weekday set, or a monthly rule with no
	// month day, matches nothing instead of erroring.
	assert.False(t, Rule{Pattern: PatternWeekly}.Matches(monday))
	assert.False(t, Rule{Pattern: PatternBiweekly}.Matches(monday))
	assert.False(t, Rule{Pattern: PatternMonthly}.Matches(monday))
	assert.False(t, Rule{}.Matches(monday))
}

func TestRule_DatesBetween_SingleDay(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: PatternWeekly, Weekdays: []time.Weekday{time.Thursday}}

	assert.Equal(t,
		[]time.Time{date(2025, time.January, 2)},
		rule.DatesBetween(date(2025, time.January, 2), date(2025, time.January, 2)))
	assert.Empty(t, rule.DatesBetween(date(2025, time.January, 3), date(2025, time.January, 3)))
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    Pattern
		wantErr bool
	}{
		{input: "daily", want: PatternDaily},
		{input: " Weekly ", want: PatternWeekly},
		{input: "BIWEEKLY", want: PatternBiweekly},
		{input: "monthly", want: PatternMonthly},
		{input: "fortnightly", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParsePattern(tc.input)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnknownPattern, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"Saturday":  time.Saturday,
	} {
		got, ok := ParseWeekday(name)
		require.True(t, ok, "weekday %q", name)
		assert.Equal(t, want, got)
		assert.Equal(t, got, mustParseWeekday(t, WeekdayName(got)))
	}

	_, ok := ParseWeekday("someday")
	assert.False(t, ok)
}

func mustParseWeekday(t *testing.T, name string) time.Weekday {
	t.Helper()
	day, ok := ParseWeekday(name)
	require.True(t, ok)
	return day
}

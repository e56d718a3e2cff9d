package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDaysUntilFriday(t *testing.T) {
	// 2025-10-31 is a Friday.
	friday := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)

	cases := map[time.Weekday]int{
		time.Sunday:    5,
		time.Monday:    4,
		time.Tuesday:   3,
		time.Wednesday: 2,
		time.Thursday:  1,
		time.Friday:    0,
		time.Saturday:  6,
	}

	for offset := 0; offset < 7; offset++ {
		day := friday.AddDate(0, 0, offset)
		want := cases[day.Weekday()]
		require.Equal(t, want, DaysUntilFriday(day), "weekday %s", day.Weekday())
	}
}

func TestFridaysBetweenCoversEightWeeks(t *testing.T) {
	today := time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC) // Monday
	from := today.AddDate(0, 0, -55)

	fridays := FridaysBetween(from, today)
	require.Len(t, fridays, 8)
	for _, f := range fridays {
		require.Equal(t, time.Friday, f.Weekday())
	}
	require.True(t, fridays[0].Before(fridays[7]))
}

func TestDayOfDropsTimeComponent(t *testing.T) {
	ts := time.Date(2025, time.October, 31, 23, 59, 12, 400, time.FixedZone("x", 0))
	day := DayOf(ts)
	require.Equal(t, time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC), day)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, time.October, 6, 8, 30, 0, 0, time.UTC)
	end := time.Date(2025, time.October, 27, 22, 0, 0, 0, time.UTC)
	require.Equal(t, 21, DaysBetween(start, end))
	require.Equal(t, 0, DaysBetween(end, end))
}

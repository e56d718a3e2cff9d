package domain

import "time"

// DayOf truncates a timestamp to its calendar day in UTC. All date
// arithmetic in this service is calendar-day based, never timestamp based.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsFriday reports whether the given day falls on a Friday.
func IsFriday(day time.Time) bool {
	return day.Weekday() == time.Friday
}

// DaysUntilFriday returns the number of calendar days from day to the next
// Friday, zero when day itself is a Friday.
func DaysUntilFriday(day time.Time) int {
	dow := int(day.Weekday())
	if dow <= int(time.Friday) {
		return int(time.Friday) - dow
	}
	return 12 - dow
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}

// FridaysBetween enumerates every Friday within [from, to], inclusive on
// both ends, in ascending order.
func FridaysBetween(from, to time.Time) []time.Time {
	from, to = DayOf(from), DayOf(to)
	fridays := make([]time.Time, 0, 8)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsFriday(d) {
			fridays = append(fridays, d)
		}
	}
	return fridays
}

package workflow

import "time"

// ClosureDays converts a closure end date into the day count handed to the
// shop gateway: the number of calendar days from the start of today through
// the end of the selected date, inclusive, never less than 1. The selected
// date being today yields 1; today+3 yields 4.
func ClosureDays(today, until time.Time) int {
	start := startOfDay(today)
	end := startOfDay(until).AddDate(0, 0, 1)

	span := end.Sub(start)
	const day = 24 * time.Hour
	days := int(span / day)
	if span%day > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

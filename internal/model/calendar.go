package model

import "time"

// DateLayout is the ISO calendar date format used in files and on the wire.
const DateLayout = "2006-01-02"

// Date returns a calendar date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf strips the clock from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddYears moves d by n calendar years keeping month and day. A Feb 29
// landing on a non-leap year clamps to Feb 28 instead of rolling into March.
func AddYears(d time.Time, n int) time.Time {
	year := d.Year() + n
	day := d.Day()
	if last := daysIn(year, d.Month()); day > last {
		day = last
	}
	return Date(year, d.Month(), day)
}

func daysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// MonthsBetweenExact counts the complete months from d1 to d2. A month only
// counts once d2's day-of-month reaches d1's. Returns 0 when d2 is not after d1.
func MonthsBetweenExact(d1, d2 time.Time) int {
	if !d2.After(d1) {
		return 0
	}
	total := (d2.Year()-d1.Year())*12 + int(d2.Month()) - int(d1.Month())
	if d2.Day() < d1.Day() {
		total--
	}
	if total < 0 {
		return 0
	}
	return total
}

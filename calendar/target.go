package calendar

import "time"

// isTargetHoliday implements the TARGET2 closing days.
func isTargetHoliday(t time.Time) bool {
	y, m, d := t.Date()
	dd := t.YearDay()
	em := easterMonday(y)
	switch {
	case m == time.January && d == 1:
		return true
	case y >= 2000 && (dd == em-3 || dd == em):
		return true
	case y >= 2000 && m == time.May && d == 1:
		return true
	case m == time.December && d == 25:
		return true
	case y >= 2000 && m == time.December && d == 26:
		return true
	case m == time.December && d == 31 && (y == 1998 || y == 1999 || y == 2001):
		return true
	}
	return false
}

// easterMonday returns the day of year of Easter Monday (Gregorian computus).
func easterMonday(year int) int {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.YearDay() + 1
}

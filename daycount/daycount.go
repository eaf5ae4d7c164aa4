// Package daycount computes accrual year fractions.
package daycount

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/zcswap/utils"
)

// DayCounter computes the year fraction between two dates.
type DayCounter interface {
	Name() string
	YearFraction(start, end time.Time) float64
}

// Convention is a named day count convention.
type Convention string

const (
	Act360     Convention = "ACT/360"
	Act365F    Convention = "ACT/365F"
	Thirty360  Convention = "30/360"
	ThirtyE360 Convention = "30E/360"
	ActActISDA Convention = "ACT/ACT"
)

// Name implements DayCounter.
func (c Convention) Name() string { return string(c) }

// YearFraction implements DayCounter. Unknown conventions fall back to ACT/365F.
func (c Convention) YearFraction(start, end time.Time) float64 {
	switch c {
	case Act360:
		return utils.Days(start, end) / 360.0
	case Act365F:
		return utils.Days(start, end) / 365.0
	case Thirty360:
		return thirty360US(start, end)
	case ThirtyE360:
		return thirtyE360(start, end)
	case ActActISDA:
		return actActISDA(start, end)
	default:
		return utils.Days(start, end) / 365.0
	}
}

// Parse resolves the common spellings of a convention.
func Parse(s string) (Convention, error) {
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch v {
	case "ACT/360", "A360", "ACTUAL360":
		return Act360, nil
	case "ACT/365F", "ACT/365", "A365F", "ACTUAL365FIXED":
		return Act365F, nil
	case "30/360", "30U/360", "BONDBASIS":
		return Thirty360, nil
	case "30E/360", "EUROBOND":
		return ThirtyE360, nil
	case "ACT/ACT", "ACT/ACTISDA", "ACTUALACTUAL":
		return ActActISDA, nil
	default:
		return "", fmt.Errorf("daycount: unknown convention %q", s)
	}
}

// thirty360US is the 30/360 bond basis: D1=31 -> 30; D2=31 -> 30 when D1 >= 30.
func thirty360US(start, end time.Time) float64 {
	d1 := start.Day()
	d2 := end.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 >= 30 {
		d2 = 30
	}
	return days360(start, end, d1, d2)
}

// thirtyE360 caps both day-of-month values at 30.
func thirtyE360(start, end time.Time) float64 {
	d1 := min(start.Day(), 30)
	d2 := min(end.Day(), 30)
	return days360(start, end, d1, d2)
}

func days360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}

// actActISDA splits the period at year boundaries and divides by each year's length.
func actActISDA(start, end time.Time) float64 {
	if start.Equal(end) {
		return 0
	}
	if end.Before(start) {
		return -actActISDA(end, start)
	}
	y1, y2 := start.Year(), end.Year()
	if y1 == y2 {
		return utils.Days(start, end) / daysInYear(y1)
	}
	sum := utils.Days(start, utils.Date(y1+1, time.January, 1)) / daysInYear(y1)
	sum += float64(y2 - y1 - 1)
	sum += utils.Days(utils.Date(y2, time.January, 1), end) / daysInYear(y2)
	return sum
}

func daysInYear(y int) float64 {
	if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
		return 366
	}
	return 365
}

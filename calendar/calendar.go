package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/zcswap/utils"
)

// Calendar answers business-day questions for a settlement market.
type Calendar interface {
	Name() string
	IsBusinessDay(t time.Time) bool
}

// CalendarID identifies a rule-based holiday calendar.
type CalendarID string

const (
	TARGET       CalendarID = "TARGET"
	WeekendsOnly CalendarID = "WEEKENDS"
	NullCalendar CalendarID = "NULL"
)

// Name implements Calendar.
func (c CalendarID) Name() string { return string(c) }

// IsBusinessDay checks weekends and the calendar's holiday rules.
func (c CalendarID) IsBusinessDay(t time.Time) bool {
	switch c {
	case NullCalendar:
		return true
	case TARGET:
		return !isWeekend(t) && !isTargetHoliday(t)
	default:
		return !isWeekend(t)
	}
}

// Lookup resolves a calendar by name (case-insensitive).
func Lookup(name string) (Calendar, error) {
	switch CalendarID(strings.ToUpper(strings.TrimSpace(name))) {
	case TARGET:
		return TARGET, nil
	case WeekendsOnly, "WEEKENDSONLY":
		return WeekendsOnly, nil
	case NullCalendar, "":
		return NullCalendar, nil
	default:
		return nil, fmt.Errorf("calendar: unknown calendar %q", name)
	}
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// Adjust moves t onto a business day according to conv.
func Adjust(cal Calendar, t time.Time, conv BusinessDayConvention) time.Time {
	switch conv {
	case Unadjusted:
		return t
	case Following:
		return following(cal, t)
	case ModifiedFollowing:
		adj := following(cal, t)
		if adj.Month() != t.Month() {
			return preceding(cal, t)
		}
		return adj
	case Preceding:
		return preceding(cal, t)
	case ModifiedPreceding:
		adj := preceding(cal, t)
		if adj.Month() != t.Month() {
			return following(cal, t)
		}
		return adj
	default:
		return following(cal, t)
	}
}

func following(cal Calendar, t time.Time) time.Time {
	for !cal.IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func preceding(cal Calendar, t time.Time) time.Time {
	for !cal.IsBusinessDay(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal Calendar, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if cal.IsBusinessDay(t) {
			n -= step
		}
	}
	return t
}

// Advance moves t by p.
//
// Day periods count business days; a zero-length period only adjusts t.
// Month and year periods roll like Excel's EDATE, and with endOfMonth set a start
// on the last business day of its month lands on the last business day of the target month.
func Advance(cal Calendar, t time.Time, p Period, conv BusinessDayConvention, endOfMonth bool) time.Time {
	if p.N == 0 {
		return Adjust(cal, t, conv)
	}
	switch p.Unit {
	case Days:
		return AddBusinessDays(cal, t, p.N)
	case Weeks:
		return Adjust(cal, t.AddDate(0, 0, 7*p.N), conv)
	case Months, Years:
		months := p.N
		if p.Unit == Years {
			months *= 12
		}
		d := utils.AddMonth(t, months)
		if endOfMonth && IsEndOfMonth(cal, t) {
			return LastBusinessDayOfMonth(cal, d)
		}
		return Adjust(cal, d, conv)
	default:
		return Adjust(cal, t, conv)
	}
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal Calendar, t time.Time) time.Time {
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return preceding(cal, last)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal Calendar, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}

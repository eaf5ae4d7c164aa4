package calendar

import "time"

// HolidayCalendar is a weekends-plus-explicit-holidays calendar.
type HolidayCalendar struct {
	name     string
	holidays map[string]struct{}
}

// NewHolidayCalendar builds a calendar from a holiday list.
func NewHolidayCalendar(name string, holidays ...time.Time) *HolidayCalendar {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.Format("2006-01-02")] = struct{}{}
	}
	return &HolidayCalendar{name: name, holidays: set}
}

// Name implements Calendar.
func (c *HolidayCalendar) Name() string { return c.name }

// IsBusinessDay implements Calendar.
func (c *HolidayCalendar) IsBusinessDay(t time.Time) bool {
	if isWeekend(t) {
		return false
	}
	_, ok := c.holidays[t.Format("2006-01-02")]
	return !ok
}

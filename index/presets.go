package index

import (
	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/fixings"
	"github.com/meenmo/zcswap/termstructure"
)

// Reference rate names.
const (
	ESTR      = "ESTR"
	EURIBOR3M = "EURIBOR3M"
	EURIBOR6M = "EURIBOR6M"
)

// Standard EUR conventions.
var (
	ESTRConvention = RateConvention{
		Name:       ESTR,
		Currency:   "EUR",
		Calendar:   calendar.TARGET,
		Tenor:      calendar.Period{N: 1, Unit: calendar.Days},
		FixingDays: 0,
		DayCounter: daycount.Act360,
		Convention: calendar.Following,
	}

	Euribor3MConvention = RateConvention{
		Name:       EURIBOR3M,
		Currency:   "EUR",
		Calendar:   calendar.TARGET,
		Tenor:      calendar.Period{N: 3, Unit: calendar.Months},
		FixingDays: 2,
		DayCounter: daycount.Act360,
		Convention: calendar.ModifiedFollowing,
		EndOfMonth: true,
	}

	Euribor6MConvention = RateConvention{
		Name:       EURIBOR6M,
		Currency:   "EUR",
		Calendar:   calendar.TARGET,
		Tenor:      calendar.Period{N: 6, Unit: calendar.Months},
		FixingDays: 2,
		DayCounter: daycount.Act360,
		Convention: calendar.ModifiedFollowing,
		EndOfMonth: true,
	}
)

// IsOvernight reports whether the convention describes an overnight index.
func IsOvernight(conv RateConvention) bool {
	return conv.Tenor.Unit == calendar.Days && conv.Tenor.N == 1
}

// Preset looks up a standard convention by name.
func Preset(name string) (RateConvention, bool) {
	switch name {
	case ESTR:
		return ESTRConvention, true
	case EURIBOR3M:
		return Euribor3MConvention, true
	case EURIBOR6M:
		return Euribor6MConvention, true
	default:
		return RateConvention{}, false
	}
}

// NewPresetIndex builds a preset index; presets are valid by construction.
func NewPresetIndex(conv RateConvention, store fixings.Store, forwarding *termstructure.Handle) *RateIndex {
	idx, err := NewRateIndex(conv, store, forwarding)
	if err != nil {
		panic(err)
	}
	return idx
}

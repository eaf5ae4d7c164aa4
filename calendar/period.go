package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeUnit is the unit of a Period.
type TimeUnit int

const (
	Days TimeUnit = iota
	Weeks
	Months
	Years
)

// Period is a tenor such as 6M or 1Y.
type Period struct {
	N    int
	Unit TimeUnit
}

func (p Period) String() string {
	suffix := [...]string{"D", "W", "M", "Y"}
	if p.Unit < Days || p.Unit > Years {
		return strconv.Itoa(p.N) + "?"
	}
	return strconv.Itoa(p.N) + suffix[p.Unit]
}

// Months returns the length in months for month and year periods, 0 otherwise.
func (p Period) Months() int {
	switch p.Unit {
	case Months:
		return p.N
	case Years:
		return 12 * p.N
	default:
		return 0
	}
}

// Negate flips the sign of the period.
func (p Period) Negate() Period {
	return Period{N: -p.N, Unit: p.Unit}
}

// ParsePeriod converts tenor strings like "1D", "1W", "3M", "10Y".
func ParsePeriod(tenor string) (Period, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return Period{}, fmt.Errorf("calendar: invalid tenor %q", tenor)
	}
	var unit TimeUnit
	switch tenor[len(tenor)-1] {
	case 'D':
		unit = Days
	case 'W':
		unit = Weeks
	case 'M':
		unit = Months
	case 'Y':
		unit = Years
	default:
		return Period{}, fmt.Errorf("calendar: invalid tenor unit in %q", tenor)
	}
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil {
		return Period{}, fmt.Errorf("calendar: invalid tenor %q: %w", tenor, err)
	}
	return Period{N: n, Unit: unit}, nil
}

// MustParsePeriod is ParsePeriod for package-level tenor literals.
func MustParsePeriod(tenor string) Period {
	p, err := ParsePeriod(tenor)
	if err != nil {
		panic(err)
	}
	return p
}

// Package termstructure provides the discount curves consumed by index forecasting and
// swap discounting, plus relinkable handles that version every change.
package termstructure

import (
	"errors"
	"time"

	"github.com/meenmo/zcswap/daycount"
)

var (
	// ErrMissingTermStructure is returned when an empty handle is dereferenced.
	ErrMissingTermStructure = errors.New("missing term structure")
)

// YieldTermStructure provides discount factors relative to its reference date.
type YieldTermStructure interface {
	ReferenceDate() time.Time
	Discount(t time.Time) float64
}

// Revisioned is implemented by curves whose content can change after construction.
type Revisioned interface {
	Revision() uint64
}

// ForwardRate is the simple forward over [start, end] implied by ts.
//
// Rate is returned as a decimal (e.g., 0.025 == 2.5%).
func ForwardRate(ts YieldTermStructure, start, end time.Time, dc daycount.DayCounter) float64 {
	dfStart := ts.Discount(start)
	dfEnd := ts.Discount(end)
	alpha := dc.YearFraction(start, end)
	if alpha == 0 {
		return 0
	}
	return (dfStart/dfEnd - 1.0) / alpha
}

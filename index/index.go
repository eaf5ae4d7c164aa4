// Package index models fixing indexes and resolves fixings as past observations or forecasts.
package index

import (
	"errors"
	"time"

	"github.com/meenmo/zcswap/calendar"
)

var (
	// ErrInvalidFixingDate is returned for dates that are not fixing dates of the index.
	ErrInvalidFixingDate = errors.New("invalid fixing date")
	// ErrMissingFixing is returned when a required historical fixing is not stored.
	ErrMissingFixing = errors.New("missing fixing")
)

// Kind tags the index variant.
type Kind int

const (
	// KindCurveForecast indexes forecast their own level from interest and dividend curves.
	KindCurveForecast Kind = iota
	// KindPublished indexes are published rates; forecasts come from a forwarding curve.
	KindPublished
)

func (k Kind) String() string {
	switch k {
	case KindCurveForecast:
		return "curve-forecast"
	case KindPublished:
		return "published"
	default:
		return "unknown"
	}
}

// Index is the capability a Resolver needs from any fixing index.
type Index interface {
	Name() string
	Currency() string
	Kind() Kind
	FixingCalendar() calendar.Calendar
	IsValidFixingDate(d time.Time) bool
	// PastFixing looks up the realized fixing for d.
	PastFixing(d time.Time) (float64, bool)
	// ForecastFixing projects the fixing for d from the index's curves.
	ForecastFixing(d time.Time) (float64, error)
	// Revision changes whenever stored fixings or linked curves change.
	Revision() uint64
}

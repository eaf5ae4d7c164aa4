package index

import (
	"fmt"
	"time"

	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/fixings"
	"github.com/meenmo/zcswap/termstructure"
	"github.com/meenmo/zcswap/utils"
)

// EquityIndex forecasts its level from an interest curve and a dividend curve:
//
//	F(d) = S0 * Pd(t0, d) / Pi(t0, d)
//
// where t0 is the interest curve's reference date and S0 the fixing stored for t0.
type EquityIndex struct {
	name     string
	currency string
	calendar calendar.Calendar
	store    fixings.Store
	interest *termstructure.Handle
	dividend *termstructure.Handle
}

// NewEquityIndex builds an equity index. Either handle may be nil or empty; forecasting
// then fails with termstructure.ErrMissingTermStructure. A nil store means no history.
func NewEquityIndex(name, currency string, cal calendar.Calendar, store fixings.Store, interest, dividend *termstructure.Handle) *EquityIndex {
	if store == nil {
		store = fixings.NewManager()
	}
	if cal == nil {
		cal = calendar.NullCalendar
	}
	return &EquityIndex{
		name:     name,
		currency: currency,
		calendar: cal,
		store:    store,
		interest: interest,
		dividend: dividend,
	}
}

func (e *EquityIndex) Name() string                         { return e.name }
func (e *EquityIndex) Currency() string                     { return e.currency }
func (e *EquityIndex) Kind() Kind                           { return KindCurveForecast }
func (e *EquityIndex) FixingCalendar() calendar.Calendar    { return e.calendar }
func (e *EquityIndex) InterestCurve() *termstructure.Handle { return e.interest }
func (e *EquityIndex) DividendCurve() *termstructure.Handle { return e.dividend }

// IsValidFixingDate holds exactly on business days of the settlement calendar.
func (e *EquityIndex) IsValidFixingDate(d time.Time) bool {
	return e.calendar.IsBusinessDay(d)
}

// PastFixing reads the fixings store; it is not reconciled with the forecast.
func (e *EquityIndex) PastFixing(d time.Time) (float64, bool) {
	return e.store.Lookup(e.name, utils.Truncate(d))
}

// ForecastFixing implements Index.
func (e *EquityIndex) ForecastFixing(d time.Time) (float64, error) {
	if e.interest.Empty() {
		return 0, fmt.Errorf("%s: interest curve: %w", e.name, termstructure.ErrMissingTermStructure)
	}
	if e.dividend.Empty() {
		return 0, fmt.Errorf("%s: dividend curve: %w", e.name, termstructure.ErrMissingTermStructure)
	}
	base, err := e.interest.ReferenceDate()
	if err != nil {
		return 0, err
	}
	base = utils.Truncate(base)
	if d.Before(base) {
		return 0, fmt.Errorf("%s: forecast date %s before curve reference date %s: %w",
			e.name, d.Format("2006-01-02"), base.Format("2006-01-02"), ErrInvalidFixingDate)
	}

	spot, ok := e.PastFixing(base)
	if !ok {
		return 0, fmt.Errorf("%s: spot fixing on %s: %w", e.name, base.Format("2006-01-02"), ErrMissingFixing)
	}
	pi, err := forwardDiscount(e.interest, base, d)
	if err != nil {
		return 0, fmt.Errorf("%s: interest curve: %w", e.name, err)
	}
	pd, err := forwardDiscount(e.dividend, base, d)
	if err != nil {
		return 0, fmt.Errorf("%s: dividend curve: %w", e.name, err)
	}
	return spot * pd / pi, nil
}

// forwardDiscount is P(t0, d) = P(d) / P(t0), so curves anchored on other dates still
// discount from t0.
func forwardDiscount(h *termstructure.Handle, t0, d time.Time) (float64, error) {
	p0, err := h.Discount(t0)
	if err != nil {
		return 0, err
	}
	p, err := h.Discount(d)
	if err != nil {
		return 0, err
	}
	return p / p0, nil
}

// Clone returns a copy sharing name, currency, calendar and fixings, linked to other curves.
func (e *EquityIndex) Clone(interest, dividend *termstructure.Handle) *EquityIndex {
	return &EquityIndex{
		name:     e.name,
		currency: e.currency,
		calendar: e.calendar,
		store:    e.store,
		interest: interest,
		dividend: dividend,
	}
}

// Revision implements Index.
func (e *EquityIndex) Revision() uint64 {
	return e.store.Revision() + e.interest.Revision() + e.dividend.Revision()
}

package index

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/fixings"
	"github.com/meenmo/zcswap/termstructure"
	"github.com/meenmo/zcswap/utils"
)

// RateConvention captures the publication conventions of an interest rate index.
type RateConvention struct {
	Name       string
	Currency   string
	Calendar   calendar.Calendar
	Tenor      calendar.Period
	FixingDays int
	DayCounter daycount.DayCounter
	Convention calendar.BusinessDayConvention
	EndOfMonth bool
}

// RateIndex is a published interest rate (overnight or term). Realized fixings come from
// the fixings store; forecasts are simple forwards off the forwarding curve.
type RateIndex struct {
	conv       RateConvention
	store      fixings.Store
	forwarding *termstructure.Handle
}

// NewRateIndex validates conv and builds the index. forwarding may be nil or empty when
// only historical fixings are needed.
func NewRateIndex(conv RateConvention, store fixings.Store, forwarding *termstructure.Handle) (*RateIndex, error) {
	if conv.Name == "" {
		return nil, errors.New("NewRateIndex: name is required")
	}
	if conv.Calendar == nil {
		return nil, fmt.Errorf("NewRateIndex: %s: calendar is required", conv.Name)
	}
	if conv.DayCounter == nil {
		return nil, fmt.Errorf("NewRateIndex: %s: day counter is required", conv.Name)
	}
	if conv.Tenor.N <= 0 {
		return nil, fmt.Errorf("NewRateIndex: %s: tenor must be positive, got %s", conv.Name, conv.Tenor)
	}
	if conv.FixingDays < 0 {
		return nil, fmt.Errorf("NewRateIndex: %s: negative fixing days %d", conv.Name, conv.FixingDays)
	}
	if conv.Convention == "" {
		conv.Convention = calendar.ModifiedFollowing
	}
	if store == nil {
		store = fixings.NewManager()
	}
	return &RateIndex{conv: conv, store: store, forwarding: forwarding}, nil
}

func (r *RateIndex) Name() string                                          { return r.conv.Name }
func (r *RateIndex) Currency() string                                      { return r.conv.Currency }
func (r *RateIndex) Kind() Kind                                            { return KindPublished }
func (r *RateIndex) FixingCalendar() calendar.Calendar                     { return r.conv.Calendar }
func (r *RateIndex) Tenor() calendar.Period                                { return r.conv.Tenor }
func (r *RateIndex) FixingDays() int                                       { return r.conv.FixingDays }
func (r *RateIndex) DayCounter() daycount.DayCounter                       { return r.conv.DayCounter }
func (r *RateIndex) BusinessDayConvention() calendar.BusinessDayConvention { return r.conv.Convention }
func (r *RateIndex) ForwardingCurve() *termstructure.Handle                { return r.forwarding }

// IsValidFixingDate holds exactly on business days of the fixing calendar.
func (r *RateIndex) IsValidFixingDate(d time.Time) bool {
	return r.conv.Calendar.IsBusinessDay(d)
}

// PastFixing implements Index.
func (r *RateIndex) PastFixing(d time.Time) (float64, bool) {
	return r.store.Lookup(r.conv.Name, utils.Truncate(d))
}

// ValueDate is the start of the deposit period fixed on fixingDate.
func (r *RateIndex) ValueDate(fixingDate time.Time) time.Time {
	return calendar.AddBusinessDays(r.conv.Calendar, fixingDate, r.conv.FixingDays)
}

// FixingDate is the fixing date for a deposit starting on valueDate.
func (r *RateIndex) FixingDate(valueDate time.Time) time.Time {
	return calendar.AddBusinessDays(r.conv.Calendar, valueDate, -r.conv.FixingDays)
}

// MaturityDate is the end of the deposit period starting on valueDate.
func (r *RateIndex) MaturityDate(valueDate time.Time) time.Time {
	return calendar.Advance(r.conv.Calendar, valueDate, r.conv.Tenor, r.conv.Convention, r.conv.EndOfMonth)
}

// ForecastFixing implements Index.
func (r *RateIndex) ForecastFixing(d time.Time) (float64, error) {
	ts, err := r.forwarding.Current()
	if err != nil {
		return 0, fmt.Errorf("%s: forwarding curve: %w", r.conv.Name, err)
	}
	start := r.ValueDate(d)
	end := r.MaturityDate(start)
	return termstructure.ForwardRate(ts, start, end, r.conv.DayCounter), nil
}

// Clone returns a copy sharing conventions and fixings, linked to another forwarding curve.
func (r *RateIndex) Clone(forwarding *termstructure.Handle) *RateIndex {
	return &RateIndex{conv: r.conv, store: r.store, forwarding: forwarding}
}

// Revision implements Index.
func (r *RateIndex) Revision() uint64 {
	return r.store.Revision() + r.forwarding.Revision()
}

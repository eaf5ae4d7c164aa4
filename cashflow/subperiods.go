package cashflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/zcswap/averaging"
	"github.com/meenmo/zcswap/calendar"
	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/index"
	"github.com/meenmo/zcswap/utils"
)

// RateIndex is what a SubPeriodsCoupon needs from its index.
type RateIndex interface {
	index.Index
	Tenor() calendar.Period
	DayCounter() daycount.DayCounter
	BusinessDayConvention() calendar.BusinessDayConvention
	FixingDate(valueDate time.Time) time.Time
}

// SubPeriodsParams defines a SubPeriodsCoupon.
type SubPeriodsParams struct {
	PaymentDate          time.Time
	Nominal              float64
	StartDate            time.Time
	EndDate              time.Time
	Index                RateIndex
	Averaging            averaging.Convention
	Resolver             *index.Resolver
	ForecastTodaysFixing bool
}

// SubPeriodsCoupon pays nominal * aggregate rate once, where the aggregate combines the index
// fixings of every sub-period between start and end.
//
// Sub-periods roll backward from the end date by the index tenor on the index calendar.
// Fixings are resolved on every Amount call; nothing is cached.
type SubPeriodsCoupon struct {
	paymentDate          time.Time
	nominal              float64
	startDate            time.Time
	endDate              time.Time
	index                RateIndex
	averaging            averaging.Convention
	resolver             *index.Resolver
	forecastTodaysFixing bool

	valueDates  []time.Time
	fixingDates []time.Time
	fractions   []float64
}

// NewSubPeriodsCoupon builds the sub-period schedule.
func NewSubPeriodsCoupon(p SubPeriodsParams) (*SubPeriodsCoupon, error) {
	if p.Index == nil {
		return nil, errors.New("NewSubPeriodsCoupon: index is required")
	}
	if p.Resolver == nil {
		return nil, errors.New("NewSubPeriodsCoupon: resolver is required")
	}
	if !p.EndDate.After(p.StartDate) {
		return nil, fmt.Errorf("NewSubPeriodsCoupon: end %s not after start %s",
			p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	if p.Index.Tenor().N <= 0 {
		return nil, fmt.Errorf("NewSubPeriodsCoupon: %s: tenor must be positive", p.Index.Name())
	}

	c := &SubPeriodsCoupon{
		paymentDate:          p.PaymentDate,
		nominal:              p.Nominal,
		startDate:            p.StartDate,
		endDate:              p.EndDate,
		index:                p.Index,
		averaging:            p.Averaging,
		resolver:             p.Resolver,
		forecastTodaysFixing: p.ForecastTodaysFixing,
	}
	c.valueDates = backwardSchedule(p.StartDate, p.EndDate, p.Index)
	if len(c.valueDates) < 2 {
		return nil, fmt.Errorf("NewSubPeriodsCoupon: %s: empty schedule from %s to %s",
			p.Index.Name(), p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
	}

	dc := p.Index.DayCounter()
	for i := 0; i < len(c.valueDates)-1; i++ {
		c.fixingDates = append(c.fixingDates, p.Index.FixingDate(c.valueDates[i]))
		c.fractions = append(c.fractions, dc.YearFraction(c.valueDates[i], c.valueDates[i+1]))
	}
	return c, nil
}

// backwardSchedule rolls unadjusted dates back from end by the index tenor, prepends start,
// adjusts everything on the index calendar and drops dates that collapse after adjustment.
func backwardSchedule(start, end time.Time, idx RateIndex) []time.Time {
	cal := idx.FixingCalendar()
	conv := idx.BusinessDayConvention()
	tenor := idx.Tenor()

	shift := func(k int) time.Time {
		switch tenor.Unit {
		case calendar.Days:
			return end.AddDate(0, 0, -k*tenor.N)
		case calendar.Weeks:
			return end.AddDate(0, 0, -7*k*tenor.N)
		default:
			return utils.AddMonth(end, -k*tenor.Months())
		}
	}

	unadjusted := []time.Time{end}
	for k := 1; ; k++ {
		d := shift(k)
		if !d.After(start) {
			break
		}
		unadjusted = append([]time.Time{d}, unadjusted...)
	}
	unadjusted = append([]time.Time{start}, unadjusted...)

	out := make([]time.Time, 0, len(unadjusted))
	for _, d := range unadjusted {
		adj := calendar.Adjust(cal, d, conv)
		if len(out) > 0 && !adj.After(out[len(out)-1]) {
			continue
		}
		out = append(out, adj)
	}
	return out
}

func (c *SubPeriodsCoupon) Date() time.Time                           { return c.paymentDate }
func (c *SubPeriodsCoupon) Nominal() float64                          { return c.nominal }
func (c *SubPeriodsCoupon) StartDate() time.Time                      { return c.startDate }
func (c *SubPeriodsCoupon) EndDate() time.Time                        { return c.endDate }
func (c *SubPeriodsCoupon) Index() RateIndex                          { return c.index }
func (c *SubPeriodsCoupon) AveragingConvention() averaging.Convention { return c.averaging }

// ValueDates returns the sub-period boundaries.
func (c *SubPeriodsCoupon) ValueDates() []time.Time { return append([]time.Time(nil), c.valueDates...) }

// FixingDates returns one fixing date per sub-period.
func (c *SubPeriodsCoupon) FixingDates() []time.Time {
	return append([]time.Time(nil), c.fixingDates...)
}

// Fractions returns one accrual fraction per sub-period.
func (c *SubPeriodsCoupon) Fractions() []float64 { return append([]float64(nil), c.fractions...) }

// SubPeriods resolves the fixing of every sub-period in chronological order.
func (c *SubPeriodsCoupon) SubPeriods() ([]averaging.Period, error) {
	periods := make([]averaging.Period, len(c.fixingDates))
	for i, fd := range c.fixingDates {
		fixing, err := c.resolver.Resolve(c.index, fd, c.forecastTodaysFixing)
		if err != nil {
			return nil, fmt.Errorf("sub-period %d: %w", i, err)
		}
		periods[i] = averaging.Period{
			Start:    c.valueDates[i],
			End:      c.valueDates[i+1],
			Fraction: c.fractions[i],
			Fixing:   fixing,
		}
	}
	return periods, nil
}

// Rate returns the aggregate rate over the whole coupon period.
func (c *SubPeriodsCoupon) Rate() (float64, error) {
	periods, err := c.SubPeriods()
	if err != nil {
		return 0, err
	}
	return averaging.Average(c.averaging, periods)
}

// Amount implements CashFlow: nominal * aggregate rate.
func (c *SubPeriodsCoupon) Amount() (float64, error) {
	rate, err := c.Rate()
	if err != nil {
		return 0, err
	}
	return c.nominal * rate, nil
}

package termstructure

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/zcswap/daycount"
	"github.com/meenmo/zcswap/utils"
)

// DiscountCurve interpolates explicitly provided discount factors.
type DiscountCurve struct {
	settlement      time.Time
	dates           []time.Time
	discountFactors map[time.Time]float64
	curveDayCount   daycount.DayCounter
}

// NewDiscountCurve creates a curve from discount factors keyed by pillar date.
//
// The curve time axis uses ACT/365F. DF(settlement) is 1 unless provided.
// Between pillars DFs are log-linear (piecewise flat forward); outside the pillar range the
// nearest segment's forward is extrapolated.
func NewDiscountCurve(settlement time.Time, dfs map[time.Time]float64) (*DiscountCurve, error) {
	c := &DiscountCurve{
		settlement:      settlement,
		discountFactors: make(map[time.Time]float64, len(dfs)+1),
		curveDayCount:   daycount.Act365F,
	}
	for t, df := range dfs {
		if !(df > 0) {
			return nil, fmt.Errorf("termstructure: non-positive discount factor %g at %s", df, t.Format("2006-01-02"))
		}
		if t.Before(settlement) {
			return nil, fmt.Errorf("termstructure: pillar %s before settlement %s", t.Format("2006-01-02"), settlement.Format("2006-01-02"))
		}
		c.discountFactors[t] = df
	}
	if _, ok := c.discountFactors[settlement]; !ok {
		c.discountFactors[settlement] = 1.0
	}
	for t := range c.discountFactors {
		c.dates = append(c.dates, t)
	}
	utils.SortDates(c.dates)
	return c, nil
}

func (c *DiscountCurve) ReferenceDate() time.Time { return c.settlement }

// Discount implements YieldTermStructure.
func (c *DiscountCurve) Discount(t time.Time) float64 {
	if df, ok := c.discountFactors[t]; ok {
		return df
	}
	if len(c.dates) < 2 {
		return c.discountFactors[c.dates[0]]
	}

	d1, d2 := utils.AdjacentDates(t, c.dates)
	df1 := c.discountFactors[d1]
	df2 := c.discountFactors[d2]

	t1 := c.curveDayCount.YearFraction(c.settlement, d1)
	t2 := c.curveDayCount.YearFraction(c.settlement, d2)
	tTarget := c.curveDayCount.YearFraction(c.settlement, t)
	if t2 == t1 {
		return df1
	}

	forwardRate := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forwardRate*(tTarget-t1))
}

// ZeroRate returns the continuously-compounded zero rate (decimal) to t.
func (c *DiscountCurve) ZeroRate(t time.Time) float64 {
	tau := c.curveDayCount.YearFraction(c.settlement, t)
	if tau == 0 {
		return 0
	}
	return -math.Log(c.Discount(t)) / tau
}

// Pillars returns the curve's node dates in ascending order.
func (c *DiscountCurve) Pillars() []time.Time {
	out := make([]time.Time, len(c.dates))
	copy(out, c.dates)
	return out
}

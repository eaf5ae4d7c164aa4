// Package cashflow defines the cash-flow descriptors carried by swap legs.
package cashflow

import "time"

// CashFlow is a single payment. Amount may need market data and can fail.
type CashFlow interface {
	Date() time.Time
	Amount() (float64, error)
}

// Leg is an ordered sequence of cash flows.
type Leg []CashFlow

// HasOccurred reports whether cf is paid on or before ref. A flow paid exactly on ref counts
// as occurred unless includeRefDate is set.
func HasOccurred(cf CashFlow, ref time.Time, includeRefDate bool) bool {
	d := cf.Date()
	if d.Before(ref) {
		return true
	}
	if d.Equal(ref) {
		return !includeRefDate
	}
	return false
}

// SimpleCashFlow is a known amount paid on a date.
type SimpleCashFlow struct {
	amount float64
	date   time.Time
}

// NewSimpleCashFlow returns a fixed cash flow.
func NewSimpleCashFlow(amount float64, date time.Time) *SimpleCashFlow {
	return &SimpleCashFlow{amount: amount, date: date}
}

func (c *SimpleCashFlow) Date() time.Time          { return c.date }
func (c *SimpleCashFlow) Amount() (float64, error) { return c.amount, nil }

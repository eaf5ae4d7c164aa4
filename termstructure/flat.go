package termstructure

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meenmo/zcswap/daycount"
)

// FlatForward is a flat continuously-compounded zero curve.
type FlatForward struct {
	referenceDate time.Time
	dayCounter    daycount.DayCounter

	mu   sync.RWMutex
	rate float64
	rev  atomic.Uint64
}

// NewFlatForward builds a flat curve at rate (decimal) from referenceDate.
func NewFlatForward(referenceDate time.Time, rate float64, dc daycount.DayCounter) *FlatForward {
	return &FlatForward{referenceDate: referenceDate, rate: rate, dayCounter: dc}
}

// NoDividends is a zero-yield curve: every discount factor is 1.
func NoDividends(referenceDate time.Time) *FlatForward {
	return NewFlatForward(referenceDate, 0, daycount.Act365F)
}

func (f *FlatForward) ReferenceDate() time.Time { return f.referenceDate }

// Rate returns the current flat rate.
func (f *FlatForward) Rate() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rate
}

// SetRate moves the curve and bumps its revision.
func (f *FlatForward) SetRate(rate float64) {
	f.mu.Lock()
	f.rate = rate
	f.mu.Unlock()
	f.rev.Add(1)
}

func (f *FlatForward) Discount(t time.Time) float64 {
	tau := f.dayCounter.YearFraction(f.referenceDate, t)
	return math.Exp(-f.Rate() * tau)
}

func (f *FlatForward) Revision() uint64 { return f.rev.Load() }

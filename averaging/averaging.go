// Package averaging reduces a sequence of sub-period fixings to one aggregate rate.
package averaging

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

var (
	// ErrEmptyAveragingWindow is returned when there is nothing to average.
	ErrEmptyAveragingWindow = errors.New("empty averaging window")
	// ErrInvalidAccrualFraction is returned for negative or NaN fractions.
	ErrInvalidAccrualFraction = errors.New("invalid accrual fraction")
	// ErrInvalidAccrualPeriod is returned for a dated period whose end is not after its start.
	ErrInvalidAccrualPeriod = errors.New("invalid accrual period")
)

// Convention selects how period rates are combined.
type Convention int

const (
	// Compound: prod(1 + f_i * r_i) - 1.
	Compound Convention = iota
	// Simple: sum(f_i * r_i).
	Simple
)

func (c Convention) String() string {
	switch c {
	case Compound:
		return "COMPOUND"
	case Simple:
		return "SIMPLE"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// ParseConvention accepts "compound" or "simple" in any case.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "COMPOUND", "COMPOUNDED", "COMPOUNDING":
		return Compound, nil
	case "SIMPLE", "AVERAGE", "AVERAGING":
		return Simple, nil
	default:
		return 0, fmt.Errorf("averaging: unknown convention %q", s)
	}
}

// MarshalText encodes the convention by name.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a convention name.
func (c *Convention) UnmarshalText(b []byte) error {
	v, err := ParseConvention(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Period is one accrual sub-period and its fixing.
//
// Start and End are optional; when every period is dated the window is processed in
// chronological order regardless of input order.
type Period struct {
	Start    time.Time
	End      time.Time
	Fraction float64
	Fixing   float64
}

// Average returns the aggregate rate of periods under conv.
func Average(conv Convention, periods []Period) (float64, error) {
	if len(periods) == 0 {
		return 0, ErrEmptyAveragingWindow
	}
	for i, p := range periods {
		if math.IsNaN(p.Fraction) || p.Fraction < 0 {
			return 0, fmt.Errorf("period %d: fraction %g: %w", i, p.Fraction, ErrInvalidAccrualFraction)
		}
		if !p.Start.IsZero() && !p.End.IsZero() && !p.End.After(p.Start) {
			return 0, fmt.Errorf("period %d: zero-length accrual %s to %s: %w",
				i, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"), ErrInvalidAccrualPeriod)
		}
	}

	ordered := chronological(periods)
	switch conv {
	case Compound:
		factor := 1.0
		for _, p := range ordered {
			factor *= 1.0 + p.Fraction*p.Fixing
		}
		return factor - 1.0, nil
	case Simple:
		sum := 0.0
		for _, p := range ordered {
			sum += p.Fraction * p.Fixing
		}
		return sum, nil
	default:
		return 0, fmt.Errorf("averaging: unknown convention %d", int(conv))
	}
}

func chronological(periods []Period) []Period {
	for _, p := range periods {
		if p.Start.IsZero() {
			return periods
		}
	}
	out := make([]Period, len(periods))
	copy(out, periods)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

package index

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meenmo/zcswap/utils"
)

// Source tells where a resolved fixing came from.
type Source int

const (
	SourceHistory Source = iota
	SourceForecast
)

func (s Source) String() string {
	switch s {
	case SourceHistory:
		return "fixing"
	case SourceForecast:
		return "forecast"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Resolver decides whether a fixing is a historical observation or a forecast,
// relative to its valuation date.
//
// It holds no cache: every call reads the current fixings and curves. Moving the valuation
// date with SetToday bumps Revision.
type Resolver struct {
	Logger *slog.Logger

	mu    sync.RWMutex
	today time.Time
	rev   atomic.Uint64
}

// NewResolver returns a resolver valuing as of today.
func NewResolver(today time.Time) *Resolver {
	return &Resolver{today: utils.Truncate(today)}
}

// Today returns the valuation date.
func (r *Resolver) Today() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.today
}

// SetToday moves the valuation date. Setting the current date again is a no-op.
func (r *Resolver) SetToday(today time.Time) {
	d := utils.Truncate(today)
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Equal(r.today) {
		return
	}
	r.today = d
	r.rev.Add(1)
}

// Revision changes whenever the valuation date moves.
func (r *Resolver) Revision() uint64 { return r.rev.Load() }

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Resolve returns the fixing of idx on date.
//
// Dates before today must have a stored fixing. Today's fixing is taken from history when
// present unless forecastTodaysFixing is set. Later dates are always forecast.
func (r *Resolver) Resolve(idx Index, date time.Time, forecastTodaysFixing bool) (float64, error) {
	v, _, err := r.ResolveWithSource(idx, date, forecastTodaysFixing)
	return v, err
}

// ResolveWithSource is Resolve that also reports whether the value was observed or forecast.
func (r *Resolver) ResolveWithSource(idx Index, date time.Time, forecastTodaysFixing bool) (float64, Source, error) {
	d := utils.Truncate(date)
	if !idx.IsValidFixingDate(d) {
		return 0, 0, fmt.Errorf("%s fixing on %s: %w", idx.Name(), d.Format("2006-01-02"), ErrInvalidFixingDate)
	}

	today := r.Today()
	switch {
	case d.Before(today):
		v, ok := idx.PastFixing(d)
		if !ok {
			return 0, 0, fmt.Errorf("%s fixing on %s: %w", idx.Name(), d.Format("2006-01-02"), ErrMissingFixing)
		}
		r.logger().Debug("fixing resolved", "index", idx.Name(), "date", d.Format("2006-01-02"), "source", "history", "value", v)
		return v, SourceHistory, nil
	case d.Equal(today) && !forecastTodaysFixing:
		if v, ok := idx.PastFixing(d); ok {
			r.logger().Debug("fixing resolved", "index", idx.Name(), "date", d.Format("2006-01-02"), "source", "history", "value", v)
			return v, SourceHistory, nil
		}
	}

	v, err := idx.ForecastFixing(d)
	if err != nil {
		return 0, 0, fmt.Errorf("%s forecast for %s: %w", idx.Name(), d.Format("2006-01-02"), err)
	}
	r.logger().Debug("fixing resolved", "index", idx.Name(), "date", d.Format("2006-01-02"), "source", "forecast", "kind", idx.Kind().String(), "value", v)
	return v, SourceForecast, nil
}

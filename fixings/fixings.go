// Package fixings stores historical index fixings keyed by index name.
package fixings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrFixingConflict is returned when a different value is already stored for a date.
	ErrFixingConflict = errors.New("fixing already stored with a different value")
	// ErrInvalidFixing is returned for NaN or infinite fixing values.
	ErrInvalidFixing = errors.New("invalid fixing value")
)

const layout = "2006-01-02"

// Store supplies realized fixings.
type Store interface {
	Lookup(name string, date time.Time) (float64, bool)
	Revision() uint64
}

// TimeSeries is a date-keyed fixing history for one index.
type TimeSeries struct {
	values map[string]float64
}

// NewTimeSeries builds a series from "YYYY-MM-DD" keyed values.
func NewTimeSeries(values map[string]float64) (TimeSeries, error) {
	ts := TimeSeries{values: make(map[string]float64, len(values))}
	for k, v := range values {
		d, err := time.Parse(layout, k)
		if err != nil {
			return TimeSeries{}, fmt.Errorf("fixings: invalid date %q: %w", k, err)
		}
		ts.values[d.Format(layout)] = v
	}
	return ts, nil
}

// Get returns the value stored for date.
func (ts TimeSeries) Get(date time.Time) (float64, bool) {
	v, ok := ts.values[date.Format(layout)]
	return v, ok
}

// Len returns the number of stored fixings.
func (ts TimeSeries) Len() int { return len(ts.values) }

// Dates returns the fixing dates in ascending order.
func (ts TimeSeries) Dates() []time.Time {
	out := make([]time.Time, 0, len(ts.values))
	for k := range ts.values {
		d, _ := time.Parse(layout, k)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Manager is an in-memory Store shared by every index that reads fixings by name.
// Names are case-insensitive. Every successful write bumps the revision.
type Manager struct {
	mu     sync.RWMutex
	series map[string]map[string]float64
	rev    atomic.Uint64
}

// NewManager returns an empty store.
func NewManager() *Manager {
	return &Manager{series: make(map[string]map[string]float64)}
}

func key(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AddFixing stores one fixing. Without force, a different existing value is a conflict.
func (m *Manager) AddFixing(name string, date time.Time, value float64, force bool) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("fixings: %s on %s: %w", name, date.Format(layout), ErrInvalidFixing)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(name)
	s, ok := m.series[k]
	if !ok {
		s = make(map[string]float64)
		m.series[k] = s
	}
	d := date.Format(layout)
	if prev, exists := s[d]; exists && !force && prev != value {
		return fmt.Errorf("fixings: %s on %s (stored %g, new %g): %w", name, d, prev, value, ErrFixingConflict)
	}
	s[d] = value
	m.rev.Add(1)
	return nil
}

// AddFixings stores a whole series; it stops at the first conflict.
func (m *Manager) AddFixings(name string, ts TimeSeries, force bool) error {
	for _, d := range ts.Dates() {
		v, _ := ts.Get(d)
		if err := m.AddFixing(name, d, v, force); err != nil {
			return err
		}
	}
	return nil
}

// Lookup implements Store.
func (m *Manager) Lookup(name string, date time.Time) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.series[key(name)][date.Format(layout)]
	return v, ok
}

// Series returns a copy of the history stored under name.
func (m *Manager) Series(name string) TimeSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.series[key(name)]
	out := TimeSeries{values: make(map[string]float64, len(src))}
	for k, v := range src {
		out.values[k] = v
	}
	return out
}

// HasHistory reports whether any fixing is stored under name.
func (m *Manager) HasHistory(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.series[key(name)]) > 0
}

// ClearFixings drops the history stored under name.
func (m *Manager) ClearFixings(name string) {
	m.mu.Lock()
	delete(m.series, key(name))
	m.mu.Unlock()
	m.rev.Add(1)
}

// Revision implements Store.
func (m *Manager) Revision() uint64 { return m.rev.Load() }

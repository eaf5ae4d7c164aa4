package termstructure

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Handle is a shared, relinkable reference to a curve.
//
// Every LinkTo bumps the handle's revision; Revision also folds in the linked curve's own
// revision, so holders can detect any change by comparing two readings. A nil *Handle
// behaves as an empty handle.
type Handle struct {
	mu    sync.RWMutex
	ts    YieldTermStructure
	links atomic.Uint64
}

// NewHandle returns a handle linked to ts (which may be nil).
func NewHandle(ts YieldTermStructure) *Handle {
	return &Handle{ts: ts}
}

// LinkTo relinks the handle. The outgoing curve's revision is folded into the link count so
// Revision never repeats a value after a relink.
func (h *Handle) LinkTo(ts YieldTermStructure) {
	h.mu.Lock()
	var prev uint64
	if r, ok := h.ts.(Revisioned); ok {
		prev = r.Revision()
	}
	h.ts = ts
	h.links.Add(prev + 1)
	h.mu.Unlock()
}

// Empty reports whether the handle is unlinked.
func (h *Handle) Empty() bool {
	if h == nil {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ts == nil
}

// Current returns the linked curve.
func (h *Handle) Current() (YieldTermStructure, error) {
	if h == nil {
		return nil, ErrMissingTermStructure
	}
	h.mu.RLock()
	ts := h.ts
	h.mu.RUnlock()
	if ts == nil {
		return nil, ErrMissingTermStructure
	}
	return ts, nil
}

// Discount returns the linked curve's discount factor at t.
func (h *Handle) Discount(t time.Time) (float64, error) {
	ts, err := h.Current()
	if err != nil {
		return 0, err
	}
	df := ts.Discount(t)
	if !(df > 0) {
		return 0, fmt.Errorf("termstructure: non-positive discount factor %g at %s", df, t.Format("2006-01-02"))
	}
	return df, nil
}

// ReferenceDate returns the linked curve's reference date.
func (h *Handle) ReferenceDate() (time.Time, error) {
	ts, err := h.Current()
	if err != nil {
		return time.Time{}, err
	}
	return ts.ReferenceDate(), nil
}

// Revision strictly increases on every relink and content change of the linked curve.
func (h *Handle) Revision() uint64 {
	if h == nil {
		return 0
	}
	rev := h.links.Load()
	h.mu.RLock()
	ts := h.ts
	h.mu.RUnlock()
	if r, ok := ts.(Revisioned); ok {
		rev += r.Revision()
	}
	return rev
}

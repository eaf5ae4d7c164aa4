package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/zcswap/cashflow"
)

// Arguments is the snapshot a zero-coupon swap hands to its engine.
// Legs[0] is the fixed leg and Legs[1] the floating leg.
type Arguments struct {
	Type         Type
	BaseNominal  float64
	FixedPayment float64
	PaymentDate  time.Time
	Legs         [2]cashflow.Leg
	Payer        [2]float64
}

// Validate checks the leg structure and that the legs sit on opposite sides.
func (a *Arguments) Validate() error {
	for i, leg := range a.Legs {
		if len(leg) != 1 {
			return fmt.Errorf("leg %d has %d cash flows, want 1: %w", i, len(leg), ErrInvalidLegStructure)
		}
		if leg[0] == nil {
			return fmt.Errorf("leg %d has a nil cash flow: %w", i, ErrInvalidLegStructure)
		}
	}
	p0, p1 := a.Payer[fixedLeg], a.Payer[floatingLeg]
	if p0 == 0 || p1 == 0 || (p0 > 0) == (p1 > 0) {
		return fmt.Errorf("payer signs %g and %g: %w", p0, p1, ErrInconsistentSign)
	}
	return nil
}

// Reset implements pricing.Arguments housekeeping between runs.
func (a *Arguments) Reset() { *a = Arguments{} }

// Results is what an engine writes back for a zero-coupon swap.
// EndDiscounts holds the discount factor at each leg's last payment date.
type Results struct {
	FixedLegNPV    float64
	FloatingLegNPV float64
	NPV            float64
	EndDiscounts   [2]float64
	ValuationDate  time.Time
	Ready          bool
}

// Reset implements pricing.Results.
func (r *Results) Reset() { *r = Results{} }

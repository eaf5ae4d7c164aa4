package swap

import (
	"fmt"
	"log/slog"

	"github.com/meenmo/zcswap/cashflow"
	"github.com/meenmo/zcswap/pricing"
	"github.com/meenmo/zcswap/termstructure"
)

// DiscountingEngine values each leg as the signed sum of its unpaid flows discounted on a
// single curve. The valuation date is the curve's reference date.
type DiscountingEngine struct {
	discount *termstructure.Handle

	// IncludeSettlementDateFlows values flows paid on the reference date.
	IncludeSettlementDateFlows bool
	Logger                     *slog.Logger

	args    Arguments
	results Results
}

// NewDiscountingEngine returns an engine discounting on h.
func NewDiscountingEngine(h *termstructure.Handle, includeSettlementDateFlows bool) *DiscountingEngine {
	return &DiscountingEngine{discount: h, IncludeSettlementDateFlows: includeSettlementDateFlows}
}

func (e *DiscountingEngine) Arguments() pricing.Arguments { return &e.args }
func (e *DiscountingEngine) Results() pricing.Results     { return &e.results }

// DiscountCurve returns the handle the engine discounts on.
func (e *DiscountingEngine) DiscountCurve() *termstructure.Handle { return e.discount }

// Reset clears both arguments and results.
func (e *DiscountingEngine) Reset() {
	e.args.Reset()
	e.results.Reset()
}

// Revision implements pricing.Observable.
func (e *DiscountingEngine) Revision() uint64 { return e.discount.Revision() }

// Calculate implements pricing.Engine.
func (e *DiscountingEngine) Calculate() error {
	ts, err := e.discount.Current()
	if err != nil {
		return fmt.Errorf("DiscountingEngine: discount curve: %w", err)
	}
	ref := ts.ReferenceDate()

	var npv, endDiscounts [2]float64
	for i, leg := range e.args.Legs {
		pv, endDF, err := e.legPV(leg, e.args.Payer[i])
		if err != nil {
			return fmt.Errorf("DiscountingEngine: leg %d: %w", i, err)
		}
		npv[i] = pv
		endDiscounts[i] = endDF
	}

	e.results = Results{
		FixedLegNPV:    npv[fixedLeg],
		FloatingLegNPV: npv[floatingLeg],
		NPV:            npv[fixedLeg] + npv[floatingLeg],
		EndDiscounts:   endDiscounts,
		ValuationDate:  ref,
		Ready:          true,
	}
	e.logger().Debug("discounted legs",
		"valuation_date", ref.Format("2006-01-02"),
		"fixed_npv", npv[fixedLeg],
		"floating_npv", npv[floatingLeg])
	return nil
}

// legPV returns sign * sum(amount * df) over unpaid flows, and the discount factor at the
// last payment date (zero for an empty leg).
func (e *DiscountingEngine) legPV(leg cashflow.Leg, sign float64) (float64, float64, error) {
	ts, err := e.discount.Current()
	if err != nil {
		return 0, 0, err
	}
	ref := ts.ReferenceDate()

	total, endDF := 0.0, 0.0
	for _, cf := range leg {
		df, err := e.discount.Discount(cf.Date())
		if err != nil {
			return 0, 0, err
		}
		endDF = df
		if cashflow.HasOccurred(cf, ref, e.IncludeSettlementDateFlows) {
			continue
		}
		amount, err := cf.Amount()
		if err != nil {
			return 0, 0, err
		}
		total += sign * amount * df
	}
	return total, endDF, nil
}

func (e *DiscountingEngine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
